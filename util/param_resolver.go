package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenRegex = regexp.MustCompile(`{(.*?)}`)

// ResolveParams expands `{$.path}` tokens in string values of params against
// the flow data map. Non-string values and strings without tokens pass
// through untouched. Used to template terminal payloads from accumulated
// form data.
func ResolveParams(flowData map[string]any, params map[string]any) map[string]any {
	output := make(map[string]any)
	for k, v := range params {
		switch tv := v.(type) {
		case map[string]any:
			output[k] = ResolveParams(flowData, tv)
		case string:
			output[k] = resolveString(flowData, tv)
		default:
			output[k] = v
		}
	}
	return output
}

func resolveString(flowData map[string]any, value string) string {
	tokens := tokenRegex.FindAllString(value, -1)
	for _, token := range tokens {
		path := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
		if !strings.HasPrefix(path, "$") {
			continue
		}
		resolved, err := jsonpath.JsonPathLookup(flowData, path)
		if err != nil {
			continue
		}
		value = strings.ReplaceAll(value, token, fmt.Sprintf("%v", resolved))
	}
	return value
}
