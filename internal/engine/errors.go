package engine

import (
	"errors"
	"net/http"
)

// fallbackMessage - текст ошибки, если сервер ответил неуспехом без тела.
const fallbackMessage = "Request failed"

// FailureKind - происхождение сбоя. Сервер кодов ошибок не отдает,
// тип нужен только для локального ветвления (метрики, breaker).
type FailureKind string

const (
	FailureTransport FailureKind = "transport" // сеть, отмена контекста
	FailureStatus    FailureKind = "status"    // не-2xx ответ сервера
	FailureDecode    FailureKind = "decode"    // тело успешного ответа не разобрано
	FailureGuard     FailureKind = "guard"     // отказ лимитера или предохранителя
)

// RemoteError - единая запись об ошибке любой удаленной операции.
// Error() возвращает ровно Message: это то, что увидит оператор.
type RemoteError struct {
	Kind    FailureKind
	Status  int // 0, если ответа не было
	Message string
	Cause   error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// serverFault - сбой, который должен учитываться предохранителем.
func (e *RemoteError) serverFault() bool {
	switch e.Kind {
	case FailureTransport:
		return true
	case FailureStatus:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

func newStatusError(status int, body string) *RemoteError {
	msg := body
	if msg == "" {
		msg = fallbackMessage
	}
	return &RemoteError{Kind: FailureStatus, Status: status, Message: msg}
}

func newTransportError(err error) *RemoteError {
	return &RemoteError{Kind: FailureTransport, Message: err.Error(), Cause: err}
}

// AsRemote достает RemoteError из цепочки ошибок.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// outcome - значение метки метрик для результата вызова.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if re, ok := AsRemote(err); ok {
		return string(re.Kind)
	}
	return "error"
}
