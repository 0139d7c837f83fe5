package main

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/wippyai/cbor-serializer/meta"
)

type styles struct {
	title lipgloss.Style
	key   lipgloss.Style
	typ   lipgloss.Style
	val   lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	guide lipgloss.Style
}

func newStyles(colour bool) styles {
	if !colour {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		key:   lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		typ:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		val:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		guide: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// tree renders a decoded Go value with one node per line.
func (s styles) tree(v any) string {
	var b strings.Builder
	s.node(&b, "", "", v)
	return b.String()
}

type child struct {
	label string
	v     any
}

func (s styles) node(b *strings.Builder, prefix, label string, v any) {
	if label != "" {
		b.WriteString(s.key.Render(label))
		b.WriteString(": ")
	}
	b.WriteString(s.typ.Render(typeName(v)))
	if scalar, ok := scalarText(v); ok {
		b.WriteByte(' ')
		b.WriteString(s.val.Render(scalar))
	}
	b.WriteByte('\n')

	kids := children(v)
	for i, c := range kids {
		branch, indent := "├── ", "│   "
		if i == len(kids)-1 {
			branch, indent = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(s.guide.Render(branch))
		s.node(b, prefix+s.guide.Render(indent), c.label, c.v)
	}
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}

func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return strconv.Quote(x), true
	case []byte:
		return "h'" + hex.EncodeToString(x) + "'", true
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	case *url.URL:
		return x.String(), true
	case uuid.UUID:
		return x.String(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return "(" + strconv.Itoa(rv.Len()) + ")", true
	case reflect.Struct:
		return "", false
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil", true
		}
		return scalarText(rv.Elem().Interface())
	}
	return fmt.Sprint(v), true
}

func children(v any) []child {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case []byte, time.Time, *url.URL, uuid.UUID:
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return children(rv.Elem().Interface())
	case reflect.Struct:
		var out []child
		for i := 0; i < rv.NumField(); i++ {
			if f := rv.Type().Field(i); f.IsExported() {
				out = append(out, child{f.Name, rv.Field(i).Interface()})
			}
		}
		return out
	case reflect.Map:
		if rv.Type().Elem().Size() == 0 {
			seq, err := meta.Elements(v)
			if err != nil {
				return nil
			}
			var out []child
			for k := range seq {
				out = append(out, child{"", k})
			}
			return out
		}
		seq, err := meta.Entries(v)
		if err != nil {
			return nil
		}
		var out []child
		for k, e := range seq {
			out = append(out, child{fmt.Sprint(k), e})
		}
		return out
	case reflect.Slice, reflect.Array:
		seq, err := meta.Elements(v)
		if err != nil {
			return nil
		}
		var out []child
		i := 0
		for e := range seq {
			out = append(out, child{"[" + strconv.Itoa(i) + "]", e})
			i++
		}
		return out
	}
	return nil
}
