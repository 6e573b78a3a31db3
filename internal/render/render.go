// Package render turns a page's content blocks into presentation variants.
// Each block type has its own required-fields contract over the block's JSON
// content and settings payloads; unknown types and malformed payloads degrade
// to a raw dump of the payload instead of failing the page.
package render

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"guildhall/internal/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RenderedBlock is the presentation output for a single content block.
type RenderedBlock struct {
	ID       uint                   `json:"id"`
	Type     string                 `json:"type"`
	HTML     string                 `json:"html,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
	// Fallback is true when the block rendered via the raw-dump path
	// (unknown type or malformed payload).
	Fallback bool `json:"fallback,omitempty"`
}

// Renderer renders content blocks. Markdown bodies go through goldmark and
// the resulting HTML is sanitized before being returned.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// New creates a Renderer with GFM markdown and a UGC sanitation policy.
func New() *Renderer {
	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   bluemonday.UGCPolicy(),
	}
}

// RenderPage renders the given blocks in position order (ties broken by
// insertion id). Callers are expected to pass only published blocks.
func (r *Renderer) RenderPage(blocks []models.ContentBlock) []RenderedBlock {
	ordered := make([]models.ContentBlock, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].ID < ordered[j].ID
	})

	out := make([]RenderedBlock, 0, len(ordered))
	for _, b := range ordered {
		out = append(out, r.Render(b))
	}
	return out
}

// Render dispatches on the block type and interprets the block's content and
// settings according to that type's schema.
func (r *Renderer) Render(b models.ContentBlock) RenderedBlock {
	settings := decodeObject(b.Settings)

	switch b.Type {
	case models.BlockTypeText:
		return r.renderText(b, settings)
	case models.BlockTypeImage:
		return r.renderImage(b, settings)
	case models.BlockTypeVideo:
		return r.renderVideo(b, settings)
	case models.BlockTypeCard, models.BlockTypeHero, models.BlockTypeCTA:
		return r.renderCard(b, settings)
	case models.BlockTypeGrid:
		return r.renderGrid(b, settings)
	case models.BlockTypeButton:
		return r.renderButton(b, settings)
	case models.BlockTypeDivider:
		return RenderedBlock{ID: b.ID, Type: string(b.Type), Settings: settings}
	default:
		return r.rawFallback(b, settings)
	}
}

func (r *Renderer) renderText(b models.ContentBlock, settings map[string]interface{}) RenderedBlock {
	// Content is either {"body": "<markdown>"} or a bare markdown string.
	body := b.Content
	if obj := decodeObject(b.Content); obj != nil {
		if s, ok := obj["body"].(string); ok {
			body = s
		}
	}
	return RenderedBlock{
		ID:       b.ID,
		Type:     string(b.Type),
		HTML:     r.markdownToHTML(body),
		Settings: settings,
	}
}

func (r *Renderer) renderImage(b models.ContentBlock, settings map[string]interface{}) RenderedBlock {
	obj := decodeObject(b.Content)
	src, _ := obj["src"].(string)
	if obj == nil || src == "" {
		return r.rawFallback(b, settings)
	}
	payload := map[string]interface{}{"src": src}
	if alt, ok := obj["alt"].(string); ok {
		payload["alt"] = alt
	}
	if caption, ok := obj["caption"].(string); ok {
		payload["caption"] = caption
	}
	return RenderedBlock{ID: b.ID, Type: string(b.Type), Payload: payload, Settings: settings}
}

func (r *Renderer) renderVideo(b models.ContentBlock, settings map[string]interface{}) RenderedBlock {
	obj := decodeObject(b.Content)
	raw, _ := obj["url"].(string)
	if obj == nil || raw == "" {
		return r.rawFallback(b, settings)
	}
	return RenderedBlock{
		ID:   b.ID,
		Type: string(b.Type),
		Payload: map[string]interface{}{
			"url":       raw,
			"embed_url": embedURL(raw),
		},
		Settings: settings,
	}
}

func (r *Renderer) renderCard(b models.ContentBlock, settings map[string]interface{}) RenderedBlock {
	obj := decodeObject(b.Content)
	if obj == nil {
		return r.rawFallback(b, settings)
	}
	payload := map[string]interface{}{}
	if title, ok := obj["title"].(string); ok {
		payload["title"] = title
	}
	if body, ok := obj["body"].(string); ok {
		payload["body_html"] = r.markdownToHTML(body)
	}
	if image, ok := obj["image"].(string); ok {
		payload["image"] = image
	}
	return RenderedBlock{ID: b.ID, Type: string(b.Type), Payload: payload, Settings: settings}
}

// renderGrid expects settings.columns and a JSON array in content.
func (r *Renderer) renderGrid(b models.ContentBlock, settings map[string]interface{}) RenderedBlock {
	var cells []interface{}
	if err := json.Unmarshal([]byte(b.Content), &cells); err != nil {
		return r.rawFallback(b, settings)
	}

	columns := 3
	if f, ok := settings["columns"].(float64); ok {
		columns = int(f)
	}
	if columns < 1 {
		columns = 1
	}
	if columns > 6 {
		columns = 6
	}

	return RenderedBlock{
		ID:   b.ID,
		Type: string(b.Type),
		Payload: map[string]interface{}{
			"columns": columns,
			"cells":   cells,
		},
		Settings: settings,
	}
}

// renderButton expects settings.buttonUrl; the label comes from content.
func (r *Renderer) renderButton(b models.ContentBlock, settings map[string]interface{}) RenderedBlock {
	buttonURL, _ := settings["buttonUrl"].(string)
	if buttonURL == "" {
		return r.rawFallback(b, settings)
	}
	label := strings.TrimSpace(b.Content)
	if obj := decodeObject(b.Content); obj != nil {
		if s, ok := obj["label"].(string); ok {
			label = s
		}
	}
	return RenderedBlock{
		ID:   b.ID,
		Type: string(b.Type),
		Payload: map[string]interface{}{
			"url":   buttonURL,
			"label": label,
		},
		Settings: settings,
	}
}

// rawFallback dumps the block's payloads untouched so an unknown type or a
// malformed payload never breaks the page.
func (r *Renderer) rawFallback(b models.ContentBlock, settings map[string]interface{}) RenderedBlock {
	payload := map[string]interface{}{
		"content": b.Content,
	}
	if settings == nil && b.Settings != "" {
		payload["settings"] = b.Settings
	}
	return RenderedBlock{
		ID:       b.ID,
		Type:     string(b.Type),
		Payload:  payload,
		Settings: settings,
		Fallback: true,
	}
}

func (r *Renderer) markdownToHTML(md string) string {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		// Conversion failures are rare; fall back to the sanitized source.
		return r.policy.Sanitize(md)
	}
	return r.policy.Sanitize(buf.String())
}

// decodeObject parses a JSON object payload; nil for empty or non-object.
func decodeObject(raw string) map[string]interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "{") {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil
	}
	return obj
}

// embedURL normalizes YouTube watch links into embed links; other URLs pass
// through unchanged.
func embedURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.ToLower(parsed.Hostname())
	switch {
	case strings.Contains(host, "youtube.com"):
		if id := parsed.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case strings.Contains(host, "youtu.be"):
		if id := strings.TrimPrefix(parsed.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	}
	return raw
}
