// Package languages holds the registry of spoken languages the client can
// detect, translate into and speak.
package languages

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

// FallbackVoice is spoken with when a target code has no configured voice.
const FallbackVoice = "en-US-AvaNeural"

// Entry maps a recognition locale to its translation code and synthesis voice.
type Entry struct {
	SourceCode string `json:"sourceCode"`
	TargetCode string `json:"targetCode"`
	VoiceName  string `json:"voiceName"`
}

// Table is an ordered, read-only set of entries.
type Table struct {
	entries  []Entry
	targets  map[string]string
	voices   map[string]string
	fallback string
}

// Default returns the built-in ten-language table. Chinese comes first and is
// the home language in the default configuration.
func Default() *Table {
	table, err := New([]Entry{
		{SourceCode: "zh-CN", TargetCode: "zh-Hans", VoiceName: "zh-CN-XiaoxiaoNeural"},
		{SourceCode: "en-US", TargetCode: "en", VoiceName: "en-US-AvaNeural"},
		{SourceCode: "ja-JP", TargetCode: "ja", VoiceName: "ja-JP-NanamiNeural"},
		{SourceCode: "ko-KR", TargetCode: "ko", VoiceName: "ko-KR-SunHiNeural"},
		{SourceCode: "fr-FR", TargetCode: "fr", VoiceName: "fr-FR-DeniseNeural"},
		{SourceCode: "es-ES", TargetCode: "es", VoiceName: "es-ES-ElviraNeural"},
		{SourceCode: "de-DE", TargetCode: "de", VoiceName: "de-DE-KatjaNeural"},
		{SourceCode: "ru-RU", TargetCode: "ru", VoiceName: "ru-RU-SvetlanaNeural"},
		{SourceCode: "it-IT", TargetCode: "it", VoiceName: "it-IT-ElsaNeural"},
		{SourceCode: "pt-BR", TargetCode: "pt", VoiceName: "pt-BR-FranciscaNeural"},
	})
	if err != nil {
		panic(err)
	}
	return table
}

// New validates entries and builds the lookups.
func New(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, errors.New("language table is empty")
	}

	cleaned := make([]Entry, 0, len(entries))
	for i, entry := range entries {
		entry.SourceCode = strings.TrimSpace(entry.SourceCode)
		entry.TargetCode = strings.TrimSpace(entry.TargetCode)
		entry.VoiceName = strings.TrimSpace(entry.VoiceName)
		if entry.SourceCode == "" || entry.TargetCode == "" || entry.VoiceName == "" {
			return nil, fmt.Errorf("entry %d: source code, target code and voice are required", i)
		}
		cleaned = append(cleaned, entry)
	}

	sources := lo.Map(cleaned, func(e Entry, _ int) string { return e.SourceCode })
	if dups := lo.FindDuplicates(sources); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate source codes: %s", strings.Join(dups, ", "))
	}
	targets := lo.Map(cleaned, func(e Entry, _ int) string { return e.TargetCode })
	if dups := lo.FindDuplicates(targets); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate target codes: %s", strings.Join(dups, ", "))
	}

	return &Table{
		entries:  cleaned,
		targets:  lo.SliceToMap(cleaned, func(e Entry) (string, string) { return e.SourceCode, e.TargetCode }),
		voices:   lo.SliceToMap(cleaned, func(e Entry) (string, string) { return e.TargetCode, e.VoiceName }),
		fallback: FallbackVoice,
	}, nil
}

// Load reads a JSON array of entries from path.
func Load(path string) (*Table, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read language table %q: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(contents, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse language table %q: %w", path, err)
	}

	table, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid language table %q: %w", path, err)
	}
	return table, nil
}

// WithFallbackVoice returns a copy of t that falls back to voice for unknown targets.
func (t *Table) WithFallbackVoice(voice string) *Table {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return t
	}
	clone := *t
	clone.fallback = voice
	return &clone
}

// ResolveTargetCode returns the target code of the first entry whose source
// code is contained in detected. The service reports locale variants that embed
// the configured code, so this is a substring match, not equality.
func (t *Table) ResolveTargetCode(detected string) (string, bool) {
	if detected == "" {
		return "", false
	}
	for _, entry := range t.entries {
		if strings.Contains(detected, entry.SourceCode) {
			return entry.TargetCode, true
		}
	}
	return "", false
}

// TargetFor is the exact sourceCode -> targetCode lookup.
func (t *Table) TargetFor(sourceCode string) (string, bool) {
	target, ok := t.targets[sourceCode]
	return target, ok
}

// VoiceFor returns the voice for targetCode, or the fallback voice.
func (t *Table) VoiceFor(targetCode string) string {
	if voice, ok := t.voices[targetCode]; ok {
		return voice
	}
	return t.fallback
}

// HasTarget reports whether targetCode is configured.
func (t *Table) HasTarget(targetCode string) bool {
	_, ok := t.voices[targetCode]
	return ok
}

// SourceCodes returns the auto-detect candidates in table order.
func (t *Table) SourceCodes() []string {
	return lo.Map(t.entries, func(e Entry, _ int) string { return e.SourceCode })
}

// TargetCodes returns the translation outputs in table order.
func (t *Table) TargetCodes() []string {
	return lo.Map(t.entries, func(e Entry, _ int) string { return e.TargetCode })
}

// Entries returns a copy of the table.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}
