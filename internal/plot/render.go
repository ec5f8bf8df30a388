//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package plot

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"regexp"
)

//
// OVERRIDE GO-ECHARTS [original code at https://github.com/go-echarts/go-echarts]
//

// go-echarts insists on whole pages; a fragment is the "chart" template alone, plus the script tags it needs

type ModRenderer interface {
	Render(w io.Writer) error
}

type CustomPageRender struct {
	c      interface{}
	before []func()
}

// NewCustomPageRender - the before funcs run ahead of every Render()
func NewCustomPageRender(c interface{}, before ...func()) ModRenderer {
	return &CustomPageRender{c: c, before: before}
}

var jsfuncmarks = regexp.MustCompile(`(__f__")|("__f__)|(__f__)`)

func (r *CustomPageRender) Render(w io.Writer) error {
	const (
		TEMPLNAME = "fragment"
	)

	for _, fn := range r.before {
		fn()
	}

	tpl, err := fragmenttemplate(TEMPLNAME, []string{FragAssetsTpl, FragBaseTpl, FragPageTpl})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = tpl.ExecuteTemplate(&buf, TEMPLNAME, r.c); err != nil {
		return err
	}

	_, err = w.Write(jsfuncmarks.ReplaceAll(buf.Bytes(), []byte("")))
	return err
}

// fragmenttemplate - parse the templates in order; the first one names the set
func fragmenttemplate(name string, contents []string) (*template.Template, error) {
	const (
		JSNAME = "safeJS"
	)

	tpl := template.New(name).Funcs(template.FuncMap{
		JSNAME: func(s interface{}) template.JS {
			return template.JS(fmt.Sprint(s))
		},
	})

	for _, cont := range contents {
		var err error
		if tpl, err = tpl.Parse(cont); err != nil {
			return nil, fmt.Errorf("plot: fragment template: %w", err)
		}
	}
	return tpl, nil
}

// FragAssetsTpl etc. adapted from https://github.com/go-echarts/go-echarts/templates/
var FragAssetsTpl = `
{{ define "assets" }}
<!-- FragAssetsTpl -->
{{- range .JSAssets.Values }}
<script src="{{ . }}"></script>
{{- end }}
{{- range .CSSAssets.Values }}
<link href="{{ . }}" rel="stylesheet">
{{- end }}
{{ end }}
`

var FragBaseTpl = `
{{- define "base" }}
<!-- FragBaseTpl -->
<div class="nscchart">
    <div class="item" id="{{ .ChartID }}" style="width:{{ .Initialization.Width }};height:{{ .Initialization.Height }};"></div>
</div>
<script type="text/javascript">
    "use strict";
    let goecharts_{{ .ChartID | safeJS }} = echarts.init(document.getElementById('{{ .ChartID | safeJS }}'), "{{ .Theme }}");
    let option_{{ .ChartID | safeJS }} = {{ .JSONNotEscaped | safeJS }};
    goecharts_{{ .ChartID | safeJS }}.setOption(option_{{ .ChartID | safeJS }});
    {{- range .JSFunctions.Fns }}
    {{ . | safeJS }}
    {{- end }}
</script>
{{ end }}
`

var FragPageTpl = `
{{- define "fragment" }}
{{- template "assets" . }}
<!-- FragPageTpl -->
<div class="nscfragment">
{{- range .Charts }} {{ template "base" . }} {{- end }}
</div>
{{ end }}
`
