package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Aliases for backward compatibility
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")

	// Domain specific aliases
	CodeCaseNotFound      = ErrCodeCaseNotFound
	CodeCatalogEmpty      = ErrCodeCatalogEmpty
	CodeTextTooShort      = ErrCodeTextTooShort
	CodeNoCandidates      = ErrCodeNoCandidates
)

// Classification Engine Error Codes
const (
	ErrCodeTextTooShort        ErrorCode = "CLS_001"
	ErrCodeNoCandidates        ErrorCode = "CLS_002"
	ErrCodeInvalidHSCode       ErrorCode = "CLS_003"
	ErrCodePipelineFailed      ErrorCode = "CLS_004"
	ErrCodeScoringFailed       ErrorCode = "CLS_005"
	ErrCodeCalibrationFailed   ErrorCode = "CLS_006"
	ErrCodeCaseNotFound        ErrorCode = "CLS_007"
	ErrCodeCaseAlreadyClosed   ErrorCode = "CLS_008"
	ErrCodeAuditWriteFailed    ErrorCode = "CLS_009"
	ErrCodeNationalCodeMissing ErrorCode = "CLS_010"
)

// Catalog / Search Error Codes
const (
	ErrCodeCatalogEmpty         ErrorCode = "CAT_001"
	ErrCodeCatalogSearchFailed  ErrorCode = "CAT_002"
	ErrCodeNotesUnavailable     ErrorCode = "CAT_003"
	ErrCodeLexiconLoadFailed    ErrorCode = "CAT_004"
	ErrCodeNomenclatureNotFound ErrorCode = "CAT_005"
)

// Embedding / Semantic Error Codes
const (
	ErrCodeEmbeddingUnavailable  ErrorCode = "EMB_001"
	ErrCodeEmbeddingFailed       ErrorCode = "EMB_002"
	ErrCodeVectorDimensionError  ErrorCode = "EMB_003"
	ErrCodeSimilaritySearchFailed ErrorCode = "EMB_004"
)

// Adaptive Tuning Error Codes
const (
	ErrCodeTuningReportMissing   ErrorCode = "TUN_001"
	ErrCodeTuningReportMalformed ErrorCode = "TUN_002"
	ErrCodeTuningWeightsInvalid  ErrorCode = "TUN_003"
)

// Evaluation Error Codes
const (
	ErrCodeEvaluationFailed       ErrorCode = "EVA_001"
	ErrCodeEvaluationSamplesEmpty ErrorCode = "EVA_002"
	ErrCodeReportUploadFailed     ErrorCode = "EVA_003"
)

// Infrastructure Error Codes (mapped from old names)
const (
	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDatabaseError     = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeSearchError       = ErrCodeCatalogSearchFailed
	CodeMessageQueueError = ErrCodeInternal
	CodeStorageError      = ErrCodeInternal
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeFeatureDisabled:    http.StatusForbidden,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeTextTooShort:        http.StatusBadRequest,
	ErrCodeNoCandidates:        http.StatusUnprocessableEntity,
	ErrCodeInvalidHSCode:       http.StatusBadRequest,
	ErrCodePipelineFailed:      http.StatusInternalServerError,
	ErrCodeScoringFailed:       http.StatusInternalServerError,
	ErrCodeCalibrationFailed:   http.StatusInternalServerError,
	ErrCodeCaseNotFound:        http.StatusNotFound,
	ErrCodeCaseAlreadyClosed:   http.StatusConflict,
	ErrCodeAuditWriteFailed:    http.StatusInternalServerError,
	ErrCodeNationalCodeMissing: http.StatusNotFound,

	ErrCodeCatalogEmpty:         http.StatusServiceUnavailable,
	ErrCodeCatalogSearchFailed:  http.StatusInternalServerError,
	ErrCodeNotesUnavailable:     http.StatusServiceUnavailable,
	ErrCodeLexiconLoadFailed:    http.StatusInternalServerError,
	ErrCodeNomenclatureNotFound: http.StatusNotFound,

	ErrCodeEmbeddingUnavailable:   http.StatusServiceUnavailable,
	ErrCodeEmbeddingFailed:        http.StatusInternalServerError,
	ErrCodeVectorDimensionError:   http.StatusInternalServerError,
	ErrCodeSimilaritySearchFailed: http.StatusInternalServerError,

	ErrCodeTuningReportMissing:   http.StatusNotFound,
	ErrCodeTuningReportMalformed: http.StatusUnprocessableEntity,
	ErrCodeTuningWeightsInvalid:  http.StatusUnprocessableEntity,

	ErrCodeEvaluationFailed:       http.StatusInternalServerError,
	ErrCodeEvaluationSamplesEmpty: http.StatusUnprocessableEntity,
	ErrCodeReportUploadFailed:     http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeTextTooShort:        "text too short to classify",
	ErrCodeNoCandidates:        "no classification candidates found",
	ErrCodeInvalidHSCode:       "invalid HS code format",
	ErrCodePipelineFailed:      "rule pipeline execution failed",
	ErrCodeScoringFailed:       "candidate scoring failed",
	ErrCodeCalibrationFailed:   "confidence calibration failed",
	ErrCodeCaseNotFound:        "classification case not found",
	ErrCodeCaseAlreadyClosed:   "classification case already closed",
	ErrCodeAuditWriteFailed:    "failed to persist classification audit record",
	ErrCodeNationalCodeMissing: "no national code found for HS6 prefix",

	ErrCodeCatalogEmpty:         "tariff catalog is empty",
	ErrCodeCatalogSearchFailed:  "catalog search failed",
	ErrCodeNotesUnavailable:     "legal notes store unavailable",
	ErrCodeLexiconLoadFailed:    "failed to load classification lexicon",
	ErrCodeNomenclatureNotFound: "nomenclature entry not found",

	ErrCodeEmbeddingUnavailable:   "embedding provider unavailable",
	ErrCodeEmbeddingFailed:        "failed to generate embedding",
	ErrCodeVectorDimensionError:   "embedding dimension mismatch",
	ErrCodeSimilaritySearchFailed: "vector similarity search failed",

	ErrCodeTuningReportMissing:   "tuning evaluation report not found",
	ErrCodeTuningReportMalformed: "tuning evaluation report malformed",
	ErrCodeTuningWeightsInvalid:  "tuned weights do not form a valid distribution",

	ErrCodeEvaluationFailed:       "batch evaluation run failed",
	ErrCodeEvaluationSamplesEmpty: "no labeled samples available for evaluation",
	ErrCodeReportUploadFailed:     "failed to upload evaluation report",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
