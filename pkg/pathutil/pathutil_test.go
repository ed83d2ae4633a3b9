package pathutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "empty input", base: "/public", input: "", wantOK: false},
		{name: "rooted input", base: "/public", input: "/reports", want: "/public/reports", wantOK: true},
		{name: "rooted input, base with trailing separator", base: "/public/", input: "/reports", want: "/public/reports", wantOK: true},
		{name: "relative input", base: "/public", input: "reports", want: "/public/reports", wantOK: true},
		{name: "relative input, base with trailing separator", base: "/public/", input: "reports", want: "/public/reports", wantOK: true},
		{name: "relative input at root", base: "/", input: "home", want: "/home", wantOK: true},
		{name: "rooted input at root", base: "/", input: "/home", want: "/home", wantOK: true},
		{name: "multi-segment input", base: "/home", input: "admin/etl", want: "/home/admin/etl", wantOK: true},
		{name: "dot segments kept literally", base: "/home", input: "../etc", want: "/home/../etc", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.base, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ExactlyOneSeparator(t *testing.T) {
	bases := []string{"/a", "/a/", "/a/b", "/a/b/", "/"}
	inputs := []string{"/x", "/x/y", "/long-name.ktr"}

	for _, base := range bases {
		for _, input := range inputs {
			got, ok := Resolve(base, input)
			if !assert.True(t, ok) {
				continue
			}
			trimmedBase := strings.TrimSuffix(base, Separator)
			assert.Equal(t, trimmedBase+input, got, "base=%q input=%q", base, input)
			assert.NotContains(t, got, "//", "base=%q input=%q", base, input)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{path: "/home/admin", want: []string{"", "home", "admin"}},
		{path: "/", want: []string{"", ""}},
		{path: "home/admin/", want: []string{"home", "admin", ""}},
		{path: "a//b", want: []string{"a", "", "b"}},
		{path: "name", want: []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.path))
		})
	}
}

func TestJoin_InvertsSplit(t *testing.T) {
	for _, p := range []string{"/home/admin", "/", "a//b", "x/"} {
		assert.Equal(t, p, Join(Split(p)))
	}
}

func TestChild(t *testing.T) {
	assert.Equal(t, "/report.ktr", Child("/", "report.ktr"))
	assert.Equal(t, "/home/report.ktr", Child("/home", "report.ktr"))
	assert.Equal(t, "/home/report.ktr", Child("/home/", "report.ktr"))
}

func TestBaseAndDir(t *testing.T) {
	assert.Equal(t, "admin", Base("/home/admin"))
	assert.Equal(t, "", Base("/"))
	assert.Equal(t, "name", Base("name"))

	assert.Equal(t, "/home", Dir("/home/admin"))
	assert.Equal(t, "/", Dir("/home"))
	assert.Equal(t, "", Dir("name"))
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("etl"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("a/b"))
}
