package domdrive

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/go-rod/rod/lib/proto"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/net/html"
)

// GetMarkdown renders the active page's HTML as markdown. The HTML is
// sanitized first so script and style payloads never reach the
// converter, and relative links are resolved against the page URL.
func (s *Service) GetMarkdown(ctx context.Context) Result {
	return s.execute(ctx, "browser_get_markdown", nil, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := page.Context(ctx).HTML()
		if err != nil {
			return nil, actionErr("browser_get_markdown", err)
		}

		clean := bluemonday.UGCPolicy().Sanitize(raw)

		var opts []converter.ConvertOptionFunc
		data := map[string]any{}
		if info, ierr := page.Context(ctx).Info(); ierr == nil {
			data["url"] = info.URL
			data["title"] = info.Title
			opts = append(opts, converter.WithDomain(info.URL))
		}

		conv := converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		)
		md, err := conv.ConvertString(clean, opts...)
		if err != nil {
			return nil, actionErr("browser_get_markdown", err)
		}
		data["markdown"] = md
		data["length"] = len(md)
		return data, nil
	})
}

// Link is one anchor extracted from a page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// GetLinks collects every anchor with an href from the active page.
func (s *Service) GetLinks(ctx context.Context) Result {
	return s.execute(ctx, "browser_get_links", nil, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := page.Context(ctx).HTML()
		if err != nil {
			return nil, actionErr("browser_get_links", err)
		}
		links, err := extractLinks(raw)
		if err != nil {
			return nil, actionErr("browser_get_links", err)
		}
		return map[string]any{"links": links, "count": len(links)}, nil
	})
}

func extractLinks(rawHTML string) ([]Link, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && a.Val != "" {
					links = append(links, Link{
						Href: a.Val,
						Text: strings.Join(strings.Fields(nodeText(n)), " "),
					})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Screenshot captures the active page as a PNG, base64-encoded so the
// envelope stays plain JSON.
func (s *Service) Screenshot(ctx context.Context, p ScreenshotParams) Result {
	return s.execute(ctx, "browser_screenshot", p, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		bin, err := page.Context(ctx).Screenshot(p.FullPage, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return nil, actionErr("browser_screenshot", err)
		}
		return map[string]any{
			"format":    "png",
			"full_page": p.FullPage,
			"data":      base64.StdEncoding.EncodeToString(bin),
			"bytes":     len(bin),
		}, nil
	})
}

// PDF prints the active page to PDF. The output is validated before it
// is returned so a truncated print job surfaces as an error instead of
// a corrupt document.
func (s *Service) PDF(ctx context.Context) Result {
	return s.execute(ctx, "browser_pdf", nil, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		stream, err := page.Context(ctx).PDF(&proto.PagePrintToPDF{})
		if err != nil {
			return nil, actionErr("browser_pdf", err)
		}
		bin, err := io.ReadAll(stream)
		if err != nil {
			return nil, actionErr("browser_pdf", err)
		}

		pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(bin), model.NewDefaultConfiguration())
		if err != nil {
			return nil, fmt.Errorf("browser_pdf: invalid output: %w", err)
		}
		return map[string]any{
			"data":  base64.StdEncoding.EncodeToString(bin),
			"bytes": len(bin),
			"pages": pdfCtx.PageCount,
		}, nil
	})
}
