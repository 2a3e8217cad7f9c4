// Package redact masks credentials in push arguments and git output before
// they reach the run log. Server-side push options such as
// --push-option=token=<value> are the usual place for them to appear.
package redact

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Placeholder replaces every masked span.
const Placeholder = "REDACTED"

// candidate matches runs of token characters long enough to be a credential.
var candidate = regexp.MustCompile(`[A-Za-z0-9/+_=-]{10,}`)

// minEntropy is the Shannon entropy, in bits per byte, above which a
// candidate is masked. Flag names and branch names stay well below it.
const minEntropy = 4.5

var (
	rules     *detect.Detector
	rulesOnce sync.Once
)

// detector returns the gitleaks detector with its default rule set, or nil
// if the rules fail to load.
func detector() *detect.Detector {
	rulesOnce.Do(func() {
		if d, err := detect.NewDetectorDefaultConfig(); err == nil {
			rules = d
		}
	})
	return rules
}

type span struct{ start, end int }

// String masks secrets in s. A span is masked when it is a high-entropy
// candidate or when a gitleaks rule reports it.
func String(s string) string {
	spans := append(highEntropySpans(s), ruleSpans(s)...)
	if len(spans) == 0 {
		return s
	}
	return mask(s, merge(spans))
}

// Bytes is String for []byte. b is returned unchanged when nothing is masked.
func Bytes(b []byte) []byte {
	s := string(b)
	if masked := String(s); masked != s {
		return []byte(masked)
	}
	return b
}

// Args masks each push argument, returning a new slice.
func Args(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = String(a)
	}
	return out
}

func highEntropySpans(s string) []span {
	var spans []span
	for _, loc := range candidate.FindAllStringIndex(s, -1) {
		if shannonEntropy(s[loc[0]:loc[1]]) > minEntropy {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}
	return spans
}

// ruleSpans locates every occurrence of each secret gitleaks finds in s.
func ruleSpans(s string) []span {
	d := detector()
	if d == nil {
		return nil
	}

	var spans []span
	for _, f := range d.DetectString(s) {
		if f.Secret == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(s[from:], f.Secret)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, span{start, start + len(f.Secret)})
			from = start + len(f.Secret)
		}
	}
	return spans
}

// merge sorts spans and joins overlapping or touching ones.
func merge(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	out := spans[:1]
	for _, sp := range spans[1:] {
		last := &out[len(out)-1]
		if sp.start > last.end {
			out = append(out, sp)
			continue
		}
		last.end = max(last.end, sp.end)
	}
	return out
}

func mask(s string, spans []span) string {
	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		b.WriteString(s[prev:sp.start])
		b.WriteString(Placeholder)
		prev = sp.end
	}
	b.WriteString(s[prev:])
	return b.String()
}

func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := range len(s) {
		freq[s[i]]++
	}
	n := float64(len(s))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}
