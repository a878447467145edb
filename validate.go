package uistream

import "fmt"

// ValidateMessage checks that a message's parts are valid for its role.
func ValidateMessage(msg Message) error {
	switch msg.Role {
	case RoleUser, RoleSystem:
		return validateParts(msg.Parts, msg.Role, allowText|allowData)
	case RoleAssistant:
		return validateParts(msg.Parts, msg.Role, allowText|allowReasoning|allowTool|allowData|allowStep)
	default:
		return fmt.Errorf("unknown role %q: %w", msg.Role, ErrValidation)
	}
}

type partAllow uint8

const (
	allowText partAllow = 1 << iota
	allowReasoning
	allowTool
	allowData
	allowStep
)

func validateParts(parts []Part, role Role, allowed partAllow) error {
	for _, p := range parts {
		switch v := p.(type) {
		case TextPart:
			if allowed&allowText == 0 {
				return fmt.Errorf("TextPart not allowed in %s message: %w", role, ErrValidation)
			}
		case ReasoningPart:
			if allowed&allowReasoning == 0 {
				return fmt.Errorf("ReasoningPart not allowed in %s message: %w", role, ErrValidation)
			}
		case ToolPart:
			if allowed&allowTool == 0 {
				return fmt.Errorf("ToolPart not allowed in %s message: %w", role, ErrValidation)
			}
			if v.ToolCallID == "" || v.ToolName == "" {
				return fmt.Errorf("ToolPart requires a tool call id and name: %w", ErrValidation)
			}
		case DynamicToolPart:
			if allowed&allowTool == 0 {
				return fmt.Errorf("DynamicToolPart not allowed in %s message: %w", role, ErrValidation)
			}
			if v.ToolCallID == "" {
				return fmt.Errorf("DynamicToolPart requires a tool call id: %w", ErrValidation)
			}
		case DataPart:
			if allowed&allowData == 0 {
				return fmt.Errorf("DataPart not allowed in %s message: %w", role, ErrValidation)
			}
			if v.Type == "" {
				return fmt.Errorf("DataPart requires a type: %w", ErrValidation)
			}
		case StepStartPart:
			if allowed&allowStep == 0 {
				return fmt.Errorf("StepStartPart not allowed in %s message: %w", role, ErrValidation)
			}
		default:
			return fmt.Errorf("unknown part type %T in %s message: %w", p, role, ErrValidation)
		}
	}
	return nil
}
