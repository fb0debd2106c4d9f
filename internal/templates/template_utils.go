package templates

import (
	"strconv"
	"strings"
	"text/template"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
	}
}

// VersionName renders a class file major version as a Java release: 52 is
// 1.8, 55 is 11
func VersionName(major int) string {
	release := major - 44
	if release <= 8 {
		return "1." + strconv.Itoa(release)
	}
	return strconv.Itoa(release)
}
