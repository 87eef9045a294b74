package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/toolbox/internal/errors"
)

// Render writes a <link> tag for every enqueued style followed by the
// <script> tags for every enqueued script. Dependencies are written before
// the handles that need them; dependencies that were never registered are
// skipped with a warning.
func (q *Queue) Render(w io.Writer) error {
	styles, err := q.order(q.styles, "style")
	if err != nil {
		return err
	}
	scripts, err := q.order(q.scripts, "script")
	if err != nil {
		return err
	}

	var nodes []*html.Node
	for _, e := range styles {
		nodes = append(nodes, styleNode(e))
	}
	for _, e := range scripts {
		extra, err := localizeNode(e)
		if err != nil {
			return errors.New("T121").Wrap(err)
		}
		if extra != nil {
			nodes = append(nodes, extra)
		}
		nodes = append(nodes, scriptNode(e))
	}

	for _, n := range nodes {
		if err := html.Render(w, n); err != nil {
			return errors.New("T121").Wrap(err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return errors.New("T121").Wrap(err)
		}
	}
	return nil
}

// RenderString is Render into a string.
func (q *Queue) RenderString() (string, error) {
	var b strings.Builder
	if err := q.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// order returns the enqueued entries of l with their dependencies, each
// dependency before its dependents and every entry once.
func (q *Queue) order(l *list, kind string) ([]*entry, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int)
	var out []*entry
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			cycle := append(append([]string(nil), path...), id)
			return errors.New("T120").
				WithChain(cycle...).
				WithDetail(kind + " dependency cycle: " + strings.Join(cycle, " -> "))
		}

		e, ok := l.registered[id]
		if !ok {
			q.logger.Warn("skipping unregistered "+kind, "id", id, "required_by", strings.Join(path, ","))
			state[id] = done
			return nil
		}

		state[id] = visiting
		path = append(path, id)
		for _, dep := range e.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		out = append(out, e)
		return nil
	}

	for _, id := range l.queue {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// versioned appends the ver query parameter to u.
func versioned(u, version string) string {
	if version == "" {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "ver=" + url.QueryEscape(version)
}

func styleNode(e *entry) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     "link",
		Attr: []html.Attribute{
			{Key: "rel", Val: "stylesheet"},
			{Key: "id", Val: e.id + "-css"},
			{Key: "href", Val: versioned(e.url, e.version)},
			{Key: "media", Val: "all"},
		},
	}
}

func scriptNode(e *entry) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr: []html.Attribute{
			{Key: "id", Val: e.id + "-js"},
			{Key: "src", Val: versioned(e.url, e.version)},
		},
	}
}

// localizeNode returns the inline script declaring the localization
// variables of e, or nil when there are none.
func localizeNode(e *entry) (*html.Node, error) {
	if len(e.localizations) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for _, l := range e.localizations {
		data := l.data
		if data == nil {
			data = map[string]string{}
		}
		// json.Marshal escapes <, > and &, so the payload cannot close the
		// script element.
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "var %s = %s;", l.key, payload)
	}

	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr:     []html.Attribute{{Key: "id", Val: e.id + "-js-extra"}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: b.String()})
	return n, nil
}
