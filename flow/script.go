package flow

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

func scriptSource(expression string) string {
	return fmt.Sprintf("var $ = {};\n%s", expression)
}

// evalScript evaluates a boolean javascript expression with the form data
// bound to $.
func evalScript(expression string, data map[string]any) (bool, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return false, err
	}
	source := fmt.Sprintf("var $ = %s;\n%s", encoded, expression)
	vm := goja.New()
	val, err := vm.RunString(source)
	if err != nil {
		return false, fmt.Errorf("error executing javascript %w", err)
	}
	return val.ToBoolean(), nil
}
