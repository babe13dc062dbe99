// Error codes reference.
//
// Technical errors are mapped to Portuguese messages an operator can act
// on, each with a code they can quote to support.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate: a record with this value already exists
//	        Patterns: "duplicate key", "violates unique", "unique constraint"
//	DB002 - Reference: the referenced record does not exist or is in use
//	        Patterns: "violates foreign key", "foreign key constraint"
//	DB003 - Connection: unable to reach the database
//	        Patterns: "connection refused", "connection reset"
//	DB004 - Timeout: the operation took too long
//	        Patterns: "context deadline exceeded", "timeout"
//	DB005 - Deadlock: conflicting concurrent operations
//	        Patterns: "deadlock"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid form: one or more fields are invalid (ValidationErrors)
//	VAL002 - Unknown mask (mask.ErrUnknownKind)
//	VAL003 - Invalid identifier
//	         Patterns: "invalid uuid", "invalid company"
//	VAL004 - Import header not recognized (ErrImportHeader)
//	VAL005 - Import file too large (ErrImportTooLarge)
//	         Patterns: "request body too large"
//
// # Entity Errors (ENT001-ENT099)
//
//	ENT001 - Unknown entity (ErrUnknownEntity)
//	ENT002 - Record not found (ErrNotFound)
//	ENT003 - No company selected (ErrNoCompany, tenant.ErrNilCompany)
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//	RATE002 - Too many concurrent imports (ErrTooManyImports)
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Sentinels are matched with errors.Is first, then patterns are matched
// case-insensitively with strings.Contains. The first match wins, so
// specific patterns come before general ones.

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/JonMunkholm/frota/internal/tenant"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{
		err: ErrUnknownEntity,
		msg: UserMessage{
			Message: "Cadastro desconhecido",
			Action:  "Verifique o endereço acessado",
			Code:    "ENT001",
		},
	},
	{
		err: ErrNotFound,
		msg: UserMessage{
			Message: "Registro não encontrado",
			Action:  "O registro pode ter sido excluído. Atualize a página",
			Code:    "ENT002",
		},
	},
	{
		err: ErrNoCompany,
		msg: UserMessage{
			Message: "Nenhuma empresa selecionada",
			Action:  "Selecione a empresa antes de continuar",
			Code:    "ENT003",
		},
	},
	{
		err: tenant.ErrNilCompany,
		msg: UserMessage{
			Message: "Nenhuma empresa selecionada",
			Action:  "Selecione a empresa antes de continuar",
			Code:    "ENT003",
		},
	},
	{
		err: ErrImportHeader,
		msg: UserMessage{
			Message: "Cabeçalho do arquivo não reconhecido",
			Action:  "A planilha deve ter uma linha com os nomes das colunas, incluindo as obrigatórias",
			Code:    "VAL004",
		},
	},
	{
		err: ErrImportTooLarge,
		msg: importTooLargeMessage,
	},
	{
		err: ErrTooManyImports,
		msg: UserMessage{
			Message: "Há importações demais em andamento",
			Action:  "Aguarde alguns instantes e envie o arquivo novamente",
			Code:    "RATE002",
		},
	},
	{
		err: mask.ErrUnknownKind,
		msg: UserMessage{
			Message: "Máscara desconhecida",
			Action:  "Use cpf, cnpj, cpfCnpj, phone, cep, plate ou date",
			Code:    "VAL002",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	duplicateMessage = UserMessage{
		Message: "Já existe um registro com este valor",
		Action:  "Verifique se o cadastro já foi feito",
		Code:    "DB001",
	}
	referenceMessage = UserMessage{
		Message: "Registro relacionado não existe ou está em uso",
		Action:  "Confira o vínculo antes de salvar ou excluir",
		Code:    "DB002",
	}
	connectionMessage = UserMessage{
		Message: "Não foi possível conectar ao banco de dados",
		Action:  "Tente novamente em alguns instantes",
		Code:    "DB003",
	}
	timeoutMessage = UserMessage{
		Message: "A operação demorou demais",
		Action:  "Tente novamente",
		Code:    "DB004",
	}
	importTooLargeMessage = UserMessage{
		Message: "Arquivo muito grande",
		Action:  "Divida a planilha em arquivos menores",
		Code:    "VAL005",
	}
	invalidIDMessage = UserMessage{
		Message: "Identificador inválido",
		Action:  "Verifique o identificador informado",
		Code:    "VAL003",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: the first matching pattern wins.
var errorPatterns = []errorPattern{
	{pattern: "duplicate key", msg: duplicateMessage},
	{pattern: "violates unique", msg: duplicateMessage},
	{pattern: "unique constraint", msg: duplicateMessage},
	{pattern: "violates foreign key", msg: referenceMessage},
	{pattern: "foreign key constraint", msg: referenceMessage},
	{pattern: "connection refused", msg: connectionMessage},
	{pattern: "connection reset", msg: connectionMessage},
	{pattern: "context deadline exceeded", msg: timeoutMessage},
	{pattern: "timeout", msg: timeoutMessage},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "O banco de dados estava ocupado",
			Action:  "Tente novamente",
			Code:    "DB005",
		},
	},
	{pattern: "request body too large", msg: importTooLargeMessage},
	{pattern: "invalid uuid", msg: invalidIDMessage},
	{pattern: "invalid company", msg: invalidIDMessage},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Muitas requisições",
			Action:  "Aguarde um momento antes de tentar novamente",
			Code:    "RATE001",
		},
	},
}

var validationMessage = UserMessage{
	Message: "Há campos inválidos no formulário",
	Action:  "Corrija os campos destacados",
	Code:    "VAL001",
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocorreu um erro inesperado",
	Action:  "Tente novamente ou contate o suporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, a generic fallback with code ERR000 is returned.
//
//	msg := MapError(fmt.Errorf("list vehicles: %w", ErrNoCompany))
//	// msg.Code == "ENT003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return validationMessage
	}
	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
