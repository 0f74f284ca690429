package core

import "canvascore/pkg/domain"

type (
	EntityKind         = domain.EntityKind
	Capability         = domain.Capability
	Bundle             = domain.Bundle
	Registry           = domain.Registry
	Entity             = domain.Entity
	Base               = domain.Base
	OwnerRef           = domain.OwnerRef
	Screen             = domain.Screen
	Element            = domain.Element
	Component          = domain.Component
	Variable           = domain.Variable
	Task               = domain.Task
	Comment            = domain.Comment
	Chat               = domain.Chat
	Member             = domain.Member
	Event              = domain.Event
	EventType          = domain.EventType
	EventSource        = domain.EventSource
	EventPayload       = domain.EventPayload
	Activity           = domain.Activity
	Notification       = domain.Notification
	NotificationType   = domain.NotificationType
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Severity           = domain.Severity
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	KindScreen       = domain.KindScreen
	KindElement      = domain.KindElement
	KindComponent    = domain.KindComponent
	KindVariable     = domain.KindVariable
	KindTask         = domain.KindTask
	KindComment      = domain.KindComment
	KindChat         = domain.KindChat
	KindMember       = domain.KindMember
	KindEvent        = domain.KindEvent
	KindActivity     = domain.KindActivity
	KindNotification = domain.KindNotification
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

const (
	NotificationSuccess = domain.NotificationSuccess
	NotificationInfo    = domain.NotificationInfo
	NotificationWarning = domain.NotificationWarning
	NotificationError   = domain.NotificationError
)
