package models

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrRuleNotFound         = errors.New("keyword rule not found")
)
