package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field はリクエストの1項目を「未指定 / 明示的な null / 値あり」の3状態で保持します。
type Field[T any] struct {
	Value T
	Set   bool // キーが JSON に存在した
	Null  bool // 値が null だった
}

// Some は値ありの Field を返します。
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null は明示的な null の Field を返します。
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Get は値が存在する (null でない) 場合に値と true を返します。
func (f Field[T]) Get() (T, bool) {
	if !f.Set || f.Null {
		var zero T
		return zero, false
	}
	return f.Value, true
}

// UnmarshalJSON は基本的な型変換 (文字列の数値・真偽値など) を行いながら値を読み込みます。
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.Null = true
		return nil
	}

	var err error
	switch p := any(&f.Value).(type) {
	case *string:
		*p, err = coerceString(data)
	case *bool:
		*p, err = coerceBool(data)
	case *int:
		*p, err = coerceInt(data)
	case *Date:
		err = p.UnmarshalJSON(data)
	default:
		err = json.Unmarshal(data, &f.Value)
	}
	return err
}

var errNotScalar = errors.New("value is not a scalar")

// decodeScalar は JSON スカラー値を string / bool / json.Number のいずれかに読み込みます。
func decodeScalar(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case string, bool, json.Number:
		return v, nil
	}
	return nil, errNotScalar
}

func coerceString(data []byte) (string, error) {
	v, err := decodeScalar(data)
	if err != nil {
		return "", errors.New("value is not a valid string")
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	}
	return "", errors.New("value is not a valid string")
}

func coerceBool(data []byte) (bool, error) {
	v, err := decodeScalar(data)
	if err != nil {
		return false, errors.New("value could not be parsed to a boolean")
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case json.Number:
		switch b.String() {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on", "t", "y":
			return true, nil
		case "false", "0", "no", "off", "f", "n":
			return false, nil
		}
	}
	return false, errors.New("value could not be parsed to a boolean")
}

func coerceInt(data []byte) (int, error) {
	v, err := decodeScalar(data)
	if err != nil {
		return 0, errors.New("value is not a valid integer")
	}
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = strings.TrimSpace(n)
	default:
		return 0, errors.New("value is not a valid integer")
	}

	if i, err := strconv.Atoi(text); err == nil {
		return i, nil
	}
	// 5.0 のような整数値の小数表記は受け付ける
	fl, err := strconv.ParseFloat(text, 64)
	if err != nil || fl != math.Trunc(fl) || math.IsInf(fl, 0) {
		return 0, fmt.Errorf("value %s is not a valid integer", text)
	}
	// float64(math.MaxInt64) は 2^63 に丸められるため >= で比較する
	if fl >= math.MaxInt64 || fl < math.MinInt64 {
		return 0, fmt.Errorf("value %s is out of range", text)
	}
	return int(fl), nil
}
