//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package plot

import (
	"bytes"
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"github.com/go-echarts/go-echarts/v2/components"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Sink - somewhere to put finished charts; name becomes part of a filename
type Sink interface {
	Write(name string, charts ...components.Charter) error
}

var badname = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func filename(name string) string {
	return badname.ReplaceAllString(name, "_")
}

// FileSink - one standalone page per Write(): <Dir>/<name>.html
type FileSink struct {
	Dir string
}

func (s FileSink) Write(name string, charts ...components.Charter) error {
	if err := os.MkdirAll(s.Dir, vv.DIRPERMS); err != nil {
		return err
	}
	p := components.NewPage()
	p.PageTitle = name
	p.SetLayout(components.PageFlexLayout)
	p.AddCharts(charts...)

	fn := filepath.Join(s.Dir, filename(name)+".html")
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err = p.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("plot: rendering %s: %w", fn, err)
	}
	return f.Close()
}

// FragmentSink - html+js fragments (no <html>, no <head>) meant for inclusion in another page: <Dir>/<name>.frag.html
type FragmentSink struct {
	Dir string
}

func (s FragmentSink) Write(name string, charts ...components.Charter) error {
	if err := os.MkdirAll(s.Dir, vv.DIRPERMS); err != nil {
		return err
	}
	b, err := Fragment(charts...)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, filename(name)+".frag.html"), b, vv.WRITEPERMS)
}

// Fragment - render the charts through the custom page template
func Fragment(charts ...components.Charter) ([]byte, error) {
	// [a] we are building the page by hand
	p := components.NewPage()
	p.Renderer = NewCustomPageRender(p, p.Validate)
	p.SetLayout(components.PageFlexLayout)

	// [b] add the assets and the charts
	for _, c := range charts {
		c.Validate()
		assets := c.GetAssets()
		for _, v := range assets.JSAssets.Values {
			p.JSAssets.Add(v)
		}
		for _, v := range assets.CSSAssets.Values {
			p.CSSAssets.Add(v)
		}
		p.Charts = append(p.Charts, c)
	}

	// [c] render the html+js
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return nil, fmt.Errorf("plot: rendering fragment: %w", err)
	}
	return buf.Bytes(), nil
}

// NopSink - keeps a note of what it was handed and writes nothing
type NopSink struct {
	mtx    sync.Mutex
	Names  []string
	Charts int
}

func (s *NopSink) Write(name string, charts ...components.Charter) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.Names = append(s.Names, name)
	s.Charts += len(charts)
	return nil
}
