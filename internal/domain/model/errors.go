package model

import (
	"errors"
	"strings"
)

// エラーの種類を表す番兵エラーです
// 呼び出し側は errors.Is で種類を判定します
var (
	ErrTimeout         = errors.New("request timed out")
	ErrTransport       = errors.New("transport failure")
	ErrServerRejected  = errors.New("server rejected the request")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ErrNoGeocodeResult はジオコーディング結果が得られなかったことを表します
var ErrNoGeocodeResult = errors.New("no geocoding result")

// Error は種類(Kind)、ユーザー向けメッセージ(Msg)、原因(Err)をまとめたエラーです
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Msg != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap は種類と原因の両方を返し、どちらに対しても errors.Is が成り立つようにします
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Rejected はサーバーが success:false を返したことを表すエラーを作成します
func Rejected(msg string) error {
	return &Error{Kind: ErrServerRejected, Msg: msg}
}

// Invalid はクライアント側の入力検証に失敗したことを表すエラーを作成します
func Invalid(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

// Unauthenticated は未ログイン（またはトークン期限切れ）を表すエラーを作成します
func Unauthenticated(msg string) error {
	return &Error{Kind: ErrUnauthenticated, Msg: msg}
}

// Transport は通信エラーを原因とともに包みます
func Transport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		return err
	}
	return &Error{Kind: ErrTransport, Err: err}
}

// UserMessage は画面に表示するメッセージを返します
// サーバーや検証のメッセージがあればそれをそのまま使い、なければ種類ごとの文言、最後に fallback を使います
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return "The server did not respond in time. Please try again."
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in first."
	case errors.Is(err, ErrNoGeocodeResult):
		return "Could not find that address."
	case errors.Is(err, ErrTransport):
		return "Could not connect to the server."
	}
	return fallback
}
