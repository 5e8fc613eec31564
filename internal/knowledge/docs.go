package knowledge

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/walker"
)

// DefaultDocsInclude selects markdown files when no include globs are configured.
var DefaultDocsInclude = []string{"**/*.md", "**/*.markdown"}

// Words that carry the shape of a question rather than its topic.
var docsIgnoredWords = map[string]bool{
	"can": true, "do": true, "help": true, "hi": true, "hello": true, "what": true, "you": true,
}

type section struct {
	doc     string
	heading string
	body    string
	words   map[string]bool
	heads   map[string]bool
}

// DocsProvider answers from a directory of markdown documents, split into
// heading sections.
type DocsProvider struct {
	cfg walker.Config
	md  goldmark.Markdown
	log logrus.FieldLogger

	mu       sync.RWMutex
	hashes   map[string]string
	sections map[string][]section
}

// NewDocsProvider creates a provider over rootDir and loads it.
func NewDocsProvider(rootDir string, include []string, log logrus.FieldLogger) (*DocsProvider, error) {
	if len(include) == 0 {
		include = DefaultDocsInclude
	}
	p := &DocsProvider{
		cfg:      walker.Config{RootDir: rootDir, Include: include},
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:      log,
		hashes:   make(map[string]string),
		sections: make(map[string][]section),
	}
	if _, err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload rescans the docs directory. Unchanged files keep their parsed
// sections; deleted files are dropped. It returns the number of files parsed.
func (p *DocsProvider) Reload() (int, error) {
	files, err := walker.Walk(p.cfg)
	if err != nil {
		return 0, fmt.Errorf("scanning docs: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	present := make(map[string]bool, len(files))
	parsed := 0
	for _, f := range files {
		present[f.RelPath] = true
		if p.hashes[f.RelPath] == f.ContentHash {
			continue
		}
		src, err := os.ReadFile(f.Path)
		if err != nil {
			p.log.WithFields(logrus.Fields{"path": f.RelPath, "error": err}).Warn("skipping unreadable doc")
			continue
		}
		p.sections[f.RelPath] = p.parse(f.RelPath, src)
		p.hashes[f.RelPath] = f.ContentHash
		parsed++
	}
	for rel := range p.hashes {
		if !present[rel] {
			delete(p.hashes, rel)
			delete(p.sections, rel)
		}
	}

	p.log.WithFields(logrus.Fields{"files": len(files), "parsed": parsed}).Debug("docs reloaded")
	return parsed, nil
}

// parse splits a document at every heading. Content before the first
// heading is filed under the document name.
func (p *DocsProvider) parse(rel string, src []byte) []section {
	doc := p.md.Parser().Parse(text.NewReader(src))

	var out []section
	cur := section{doc: rel, heading: rel}
	var body []string
	flush := func() {
		cur.body = strings.Join(body, "\n\n")
		if cur.body != "" || cur.heading != rel {
			cur.words = wordSet(cur.heading + " " + cur.body)
			cur.heads = wordSet(cur.heading)
			out = append(out, cur)
		}
		body = nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()
			cur = section{doc: rel, heading: nodeText(h, src)}
			continue
		}
		if t := nodeText(n, src); t != "" {
			body = append(body, t)
		}
	}
	flush()
	return out
}

// nodeText flattens a block to plain text, one line per nested block.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if c.Type() == ast.TypeBlock {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			b.WriteByte('\n')
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range analyzer.ExtractKeywords(s) {
		set[w] = true
	}
	return set
}

// score is the share of query terms found in the section, plus 0.2 when a
// term appears in the heading.
func (s section) score(terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	hits, headHit := 0, false
	for _, t := range terms {
		if s.words[t] {
			hits++
		}
		if s.heads[t] {
			headHit = true
		}
	}
	if hits == 0 {
		return 0
	}
	conf := float64(hits) / float64(len(terms))
	if headHit {
		conf += 0.2
	}
	return min(1.0, conf)
}

func queryTerms(a analyzer.Analysis) []string {
	var terms []string
	for _, k := range a.Keywords {
		if !docsIgnoredWords[k] {
			terms = append(terms, k)
		}
	}
	return terms
}

func (p *DocsProvider) Name() string { return "docs" }

func (p *DocsProvider) Capability() Capability {
	return Capability{Name: "docs", Threshold: 0.5}
}

// Sections returns the number of indexed sections.
func (p *DocsProvider) Sections() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, secs := range p.sections {
		n += len(secs)
	}
	return n
}

type scoredSection struct {
	section section
	conf    float64
}

// ranked returns matching sections best first; ties keep document order.
func (p *DocsProvider) ranked(a analyzer.Analysis) []scoredSection {
	terms := queryTerms(a)

	p.mu.RLock()
	docs := make([]string, 0, len(p.sections))
	for rel := range p.sections {
		docs = append(docs, rel)
	}
	sort.Strings(docs)
	var out []scoredSection
	for _, rel := range docs {
		for _, s := range p.sections[rel] {
			if c := s.score(terms); c > 0 {
				out = append(out, scoredSection{s, c})
			}
		}
	}
	p.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].conf > out[j].conf })
	return out
}

func (p *DocsProvider) CanHandle(a analyzer.Analysis) float64 {
	ranked := p.ranked(a)
	if len(ranked) == 0 {
		return 0
	}
	return ranked[0].conf
}

// GetKnowledge returns the two best matching sections.
func (p *DocsProvider) GetKnowledge(_ context.Context, a analyzer.Analysis) (Response, error) {
	ranked := p.ranked(a)
	if len(ranked) == 0 {
		return Response{Success: false, Source: p.Name()}, nil
	}
	if len(ranked) > 2 {
		ranked = ranked[:2]
	}

	var parts, refs []string
	for _, r := range ranked {
		parts = append(parts, fmt.Sprintf("%s (%s):\n%s", r.section.heading, r.section.doc, r.section.body))
		refs = append(refs, r.section.doc+"#"+r.section.heading)
	}
	return Response{
		Success:    true,
		Content:    strings.Join(parts, "\n\n"),
		Confidence: ranked[0].conf,
		Source:     p.Name(),
		Extra:      map[string]any{"sections": refs},
	}, nil
}
