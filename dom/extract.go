package dom

// extractScript is the fixed, versioned extraction routine evaluated in
// the page's script context. It serialises the live tree starting at
// document.body into the interchange schema consumed by ElementNode and
// returns it as a JSON string. Any other result shape is a parse
// failure on the Go side.
//
// Visibility is decided in-page: a positive-area client rect plus
// computed style not display:none / visibility:hidden. Interactivity is
// recomputed on the Go side during indexing; the flag emitted here is
// advisory only.
//
// v2: emits bounding_box and caps text_content at 200 chars.
const extractScript = `() => {
	const MAX_TEXT = 200;
	const MAX_DEPTH = 64;

	function ownText(el) {
		let text = '';
		for (const child of el.childNodes) {
			if (child.nodeType === Node.TEXT_NODE) {
				text += child.textContent;
			}
		}
		text = text.replace(/\s+/g, ' ').trim();
		if (text.length > MAX_TEXT) {
			text = text.slice(0, MAX_TEXT);
		}
		return text;
	}

	function isVisible(el) {
		const rect = el.getBoundingClientRect();
		if (rect.width <= 0 || rect.height <= 0) {
			return false;
		}
		const style = window.getComputedStyle(el);
		return style.display !== 'none' && style.visibility !== 'hidden';
	}

	function serialize(el, depth) {
		const node = {
			tag_name: el.tagName.toLowerCase(),
			attributes: {},
		};

		for (const attr of el.attributes) {
			node.attributes[attr.name] = attr.value;
		}

		const text = ownText(el);
		if (text) {
			node.text_content = text;
		}

		if (isVisible(el)) {
			node.is_visible = true;
			const rect = el.getBoundingClientRect();
			node.bounding_box = {
				x: rect.x,
				y: rect.y,
				width: rect.width,
				height: rect.height,
			};
		}

		if (depth < MAX_DEPTH) {
			const children = [];
			for (const child of el.children) {
				children.push(serialize(child, depth + 1));
			}
			if (children.length > 0) {
				node.children = children;
			}
		}

		return node;
	}

	const root = document.body || document.documentElement;
	return JSON.stringify(serialize(root, 0));
}`
