package validator

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Raw はJSONの数値/文字列、フォーム値のどちらでも受け取る生の値。
// 解釈はParse系の関数で行う。
type Raw struct {
	value string
	set   bool
}

func (r *Raw) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = Raw{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r.Set(s)
		return nil
	}
	r.Set(string(b))
	return nil
}

// echoのフォーム/クエリbind用
func (r *Raw) UnmarshalParam(param string) error {
	r.Set(param)
	return nil
}

func (r *Raw) Set(v string) {
	r.value = strings.TrimSpace(v)
	r.set = true
}

func (r Raw) Value() string { return r.value }

// 未指定・空文字・"null"/"none" はfalse
func (r Raw) Present() bool {
	if !r.set {
		return false
	}
	switch strings.ToLower(r.value) {
	case "", "null", "none":
		return false
	}
	return true
}

func (r Raw) Int64() (int64, error) {
	return strconv.ParseInt(r.value, 10, 64)
}
