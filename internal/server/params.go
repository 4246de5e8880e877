package server

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo"
)

// requestParams collects query, form and JSON body parameters. The body is
// only decoded as JSON when the query and form lack the key the endpoint
// cannot do without.
func requestParams(c echo.Context, requiredKey string) map[string]string {
	params := make(map[string]string)
	if form, err := c.FormParams(); err == nil {
		for k, v := range form {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}
	for k, v := range c.QueryParams() {
		if _, ok := params[k]; !ok && len(v) > 0 {
			params[k] = v[0]
		}
	}
	if _, ok := params[requiredKey]; ok {
		return params
	}

	body := c.Request().Body
	if body == nil {
		return params
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return params
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return params
	}
	for k, v := range fields {
		switch v := v.(type) {
		case string:
			params[k] = v
		case float64:
			params[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
		default:
			params[k] = fmt.Sprint(v)
		}
	}
	return params
}

// cleanVariant strips the whitespace, quotes and commas users paste along
// with a variant.
func cleanVariant(s string) string {
	return strings.Trim(s, " \t\r\n'\",")
}
