package models

import (
	"errors"
	"strconv"
)

type QueueStatus string

const (
	QueueStatusInQueue   QueueStatus = "IN_QUEUE"
	QueueStatusInProcess QueueStatus = "IN_PROCESS"
	QueueStatusUnpaid    QueueStatus = "UNPAID"
	QueueStatusCompleted QueueStatus = "COMPLETED"
)

var AllQueueStatus = []QueueStatus{
	QueueStatusInQueue,
	QueueStatusInProcess,
	QueueStatusUnpaid,
	QueueStatusCompleted,
}

func (e QueueStatus) IsValid() bool {
	switch e {
	case QueueStatusInQueue, QueueStatusInProcess, QueueStatusUnpaid, QueueStatusCompleted:
		return true
	}
	return false
}

func (e QueueStatus) String() string {
	return string(e)
}

// convert input to enum type
func (e *QueueStatus) UnmarshalText(text []byte) error {
	switch str := QueueStatus(text); str {
	case QueueStatusInQueue, QueueStatusInProcess, QueueStatusUnpaid, QueueStatusCompleted:
		*e = str
	default:
		return errors.New("invalid queue status " + strconv.Quote(string(text)))
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash           PaymentMethod = "CASH"
	PaymentMethodAccountBalance PaymentMethod = "ACCOUNT_BALANCE"
)

var AllPaymentMethod = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodAccountBalance,
}

func (e PaymentMethod) IsValid() bool {
	switch e {
	case PaymentMethodCash, PaymentMethodAccountBalance:
		return true
	}
	return false
}

func (e PaymentMethod) String() string {
	return string(e)
}

func (e *PaymentMethod) UnmarshalText(text []byte) error {
	switch str := PaymentMethod(text); str {
	case PaymentMethodCash, PaymentMethodAccountBalance:
		*e = str
	default:
		return errors.New("invalid payment method " + strconv.Quote(string(text)))
	}
	return nil
}

// ChangeAction names a repository notification.
type ChangeAction string

const (
	ChangeActionAdded    ChangeAction = "ADDED"
	ChangeActionUpdated  ChangeAction = "UPDATED"
	ChangeActionDeleted  ChangeAction = "DELETED"
	ChangeActionUpserted ChangeAction = "UPSERTED"
)
