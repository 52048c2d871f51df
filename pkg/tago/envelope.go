package tago

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

const (
	resultCodeOK     = "00"
	resultCodeNoData = "03"
)

// envelope is the wrapper every TAGO endpoint responds with.
type envelope[T any] struct {
	Response *struct {
		Header *struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      items[T] `json:"items"`
			NumOfRows  flexInt  `json:"numOfRows"`
			PageNo     flexInt  `json:"pageNo"`
			TotalCount flexInt  `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// items is the body.items field. TAGO sends an empty string instead of an
// object when a query has no results.
type items[T any] struct {
	Item itemList[T] `json:"item"`
}

func (i *items[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		i.Item = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "" {
			return fmt.Errorf("unexpected items value %q", s)
		}
		i.Item = nil
		return nil
	}

	var raw struct {
		Item itemList[T] `json:"item"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.Item = raw.Item

	return nil
}

// itemList normalizes items.item, which is a bare object when there is exactly
// one result and an array otherwise. Every endpoint decodes through it.
type itemList[T any] []T

func (l *itemList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case isNull(data):
		*l = nil
	case data[0] == '[':
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*l = many
	default:
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = itemList[T]{one}
	}

	return nil
}

// decodeEnvelope validates the envelope and returns its items. noData is true
// when the upstream legitimately found nothing.
func decodeEnvelope[T any](op string, data []byte) (list []T, noData bool, err error) {
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, &GatewayError{Kind: KindParse, Op: op, Err: err}
	}

	if env.Response == nil || env.Response.Header == nil || env.Response.Header.ResultCode == "" {
		return nil, false, &GatewayError{Kind: KindParse, Op: op, Err: errors.New("missing response header")}
	}

	header := env.Response.Header
	switch header.ResultCode {
	case resultCodeOK:
		list = env.Response.Body.Items.Item
		return list, len(list) == 0, nil
	case resultCodeNoData:
		return nil, true, nil
	default:
		return nil, false, &GatewayError{
			Kind:    KindUpstream,
			Op:      op,
			Code:    header.ResultCode,
			Message: header.ResultMsg,
		}
	}
}

// flexString accepts both JSON strings and numbers; city codes and route
// numbers switch between the two depending on the city.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())

	return nil
}

func (f flexString) String() string {
	return string(f)
}

// flexInt accepts numbers and numeric strings. Empty strings decode as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}

	if n, err := strconv.Atoi(string(s)); err == nil {
		*f = flexInt(n)
		return nil
	}

	n, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", string(s))
	}
	*f = flexInt(int(n))

	return nil
}

func isNull(data []byte) bool {
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}
