// Package parser splits a model reply into the four channel artifacts.
// Parsing is total: every field of the result is non-blank.
package parser

import (
	"regexp"
	"sort"
	"strings"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
	"insurance-agent/internal/models"
)

const DefaultVoiceTextLimit = 200

const (
	DefaultWhatsApp = "Hi! Thanks for your query about insurance. Our agent will help you shortly. 🙏"
	DefaultEmail    = "Dear Customer,\n\nThank you for your interest in our insurance products.\n\n" +
		"Our team is reviewing your query and will get back to you with detailed information shortly.\n\n" +
		"Best regards,\nInsurance Team"
)

// Field names, used as metric labels.
const (
	FieldAgentReply = "agent_reply"
	FieldWhatsApp   = "whatsapp"
	FieldEmail      = "email"
	FieldVoiceText  = "voice_text"
)

// NeedMoreInformation is the fixed reply used when a query cannot be answered at all.
func NeedMoreInformation() models.AgentResponse {
	return models.AgentResponse{
		AgentReply: "I need more information to help you. Could you please provide more details?",
		WhatsApp:   "Hi! Could you share more details so I can help you better?",
		Email: "Dear Customer,\n\nThank you for reaching out. To assist you better, could you please provide more details about your query?\n\n" +
			"Best regards,\nInsurance Team",
		VoiceText: "I need more information to help you. Please provide more details.",
	}
}

const labelPattern = `(agent[_ ]reply|whatsapp|email|voice[_ ]text)`

var (
	fenceLine = regexp.MustCompile("(?m)^[ \t]*```[^\n]*$\n?")

	// lineHeader matches a label at line start, optionally wrapped in
	// markdown decoration, followed by a colon or the end of the line.
	lineHeader = regexp.MustCompile(`(?im)^[ \t]*[*#_\[]*[ \t]*` + labelPattern + `[ \t]*[*_\]]*[ \t]*(?::[ \t]*[*_\]]*|$)`)

	// inlineHeader wins over lineHeader only when it recognises more labels.
	inlineHeader = regexp.MustCompile(`(?i)[*_\[]*\b` + labelPattern + `[ \t]*[*_\]]*[ \t]*:[ \t]*[*_\]]*`)
)

type Parser struct {
	voiceTextLimit int
	logger         logger.Logger
}

func New(voiceTextLimit int, log logger.Logger) *Parser {
	if voiceTextLimit <= 0 {
		voiceTextLimit = DefaultVoiceTextLimit
	}
	return &Parser{
		voiceTextLimit: voiceTextLimit,
		logger:         logger.Component(log, "parser"),
	}
}

var defaultParser = New(DefaultVoiceTextLimit, nil)

// Parse uses the default voice text limit and no logging.
func Parse(raw, originalQuery string) models.AgentResponse {
	return defaultParser.Parse(raw, originalQuery)
}

// Parse extracts the labelled sections of raw, backfilling any that are
// missing or blank.
func (p *Parser) Parse(raw, originalQuery string) models.AgentResponse {
	sections := Sections(raw)

	resp := models.AgentResponse{
		AgentReply: sections[FieldAgentReply],
		WhatsApp:   sections[FieldWhatsApp],
		Email:      sections[FieldEmail],
		VoiceText:  sections[FieldVoiceText],
	}

	if resp.AgentReply == "" {
		p.defaulted(FieldAgentReply, originalQuery)
		resp.AgentReply = clean(stripFences(raw))
		if resp.AgentReply == "" {
			resp.AgentReply = NeedMoreInformation().AgentReply
		}
	}
	if resp.WhatsApp == "" {
		p.defaulted(FieldWhatsApp, originalQuery)
		resp.WhatsApp = DefaultWhatsApp
	}
	if resp.Email == "" {
		p.defaulted(FieldEmail, originalQuery)
		resp.Email = DefaultEmail
	}
	if resp.VoiceText == "" {
		p.defaulted(FieldVoiceText, originalQuery)
		resp.VoiceText = strings.TrimSpace(truncateRunes(resp.AgentReply, p.voiceTextLimit))
	}
	return resp
}

func (p *Parser) defaulted(field, query string) {
	metrics.ParserDefaults.WithLabelValues(field).Inc()
	p.logger.Debug("reply section defaulted",
		apperrors.NewParseAmbiguityError(field).WithMetadata("queryLength", len(query)).Fields())
}

// Sections returns the cleaned, non-blank sections of raw keyed by field
// name. Only the first header of each label opens a section; later ones are
// body text.
func Sections(raw string) map[string]string {
	text := stripFences(raw)

	matches := lineHeader.FindAllStringSubmatchIndex(text, -1)
	if inline := inlineHeader.FindAllStringSubmatchIndex(text, -1); distinctLabels(text, inline) > distinctLabels(text, matches) {
		matches = inline
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i][0] < matches[j][0] })
	matches = firstPerLabel(text, matches)

	out := make(map[string]string, len(matches))
	for i, m := range matches {
		field := normalizeLabel(text[m[2]:m[3]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if body := clean(text[m[1]:end]); body != "" {
			out[field] = body
		}
	}
	return out
}

// firstPerLabel drops repeated headers so they stay inside the section
// they appear in, e.g. an "Email: help@x.com" line in an email body.
func firstPerLabel(text string, matches [][]int) [][]int {
	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		field := normalizeLabel(text[m[2]:m[3]])
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, m)
	}
	return out
}

func stripFences(raw string) string {
	return fenceLine.ReplaceAllString(raw, "")
}

func distinctLabels(text string, matches [][]int) int {
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		seen[normalizeLabel(text[m[2]:m[3]])] = struct{}{}
	}
	return len(seen)
}

func normalizeLabel(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// clean trims s and strips one leading '[' and one trailing ']'.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
