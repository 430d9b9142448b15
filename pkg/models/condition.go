package models

// ConditionOperator compares a resolved event field with a condition value.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "EQUALS"
	OperatorNotEquals   ConditionOperator = "NOT_EQUALS"
	OperatorContains    ConditionOperator = "CONTAINS"
	OperatorNotContains ConditionOperator = "NOT_CONTAINS"
	OperatorGreaterThan ConditionOperator = "GREATER_THAN"
	OperatorLessThan    ConditionOperator = "LESS_THAN"
	OperatorIn          ConditionOperator = "IN"
	OperatorNotIn       ConditionOperator = "NOT_IN"
)

// WorkflowCondition is a single predicate over event data. Field is a dotted
// path into the event payload.
type WorkflowCondition struct {
	Field    string            `json:"field"           validate:"required"`
	Operator ConditionOperator `json:"operator"        validate:"required"`
	Value    any               `json:"value,omitempty"`
}
