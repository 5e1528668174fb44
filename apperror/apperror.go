// Package apperror defines the error taxonomy shared by the service layer
// and the HTTP surface. Every orchestration failure is one of these; the
// controllers translate them into the client-facing {error_type, message,
// detail} body.
package apperror

import (
	"fmt"
	"net/http"
)

type Reason string

const (
	ReasonTokenMissing Reason = "token_missing"
	ReasonTokenInvalid Reason = "token_invalid"

	ReasonServerNotFound        Reason = "server_not_found"
	ReasonServerPortNotFound    Reason = "server_port_not_found"
	ReasonServerNameDuplicated  Reason = "server_name_duplicated"
	ReasonServerAlreadyDeleted  Reason = "server_already_deleted"
	ReasonServerStatusConflict  Reason = "server_status_conflict"
	ReasonServerVolumeNotLinked Reason = "server_volume_not_connected"
	ReasonRootVolumeUndetach    Reason = "server_root_volume_cant_detach"
	ReasonServerQuotaExceeded   Reason = "server_limit_over"

	ReasonVolumeNotFound       Reason = "volume_not_found"
	ReasonVolumeNameDuplicated Reason = "volume_name_duplicated"
	ReasonVolumeAlreadyDeleted Reason = "volume_already_deleted"
	ReasonVolumeServerConflict Reason = "volume_server_conflict"
	ReasonVolumeStatusConflict Reason = "volume_status_conflict"
	ReasonVolumeSizeConflict   Reason = "volume_size_upgrade_conflict"
	ReasonVolumeQuotaExceeded  Reason = "volume_limit_over"

	ReasonFloatingipNotFound       Reason = "floatingip_not_found"
	ReasonFloatingipAlreadyDeleted Reason = "floatingip_status_conflict"
	ReasonFloatingipPortConflict   Reason = "floatingip_port_conflict"
	ReasonFloatingipQuotaExceeded  Reason = "floatingip_limit_over"

	ReasonFlavorNotFound    Reason = "flavor_not_found"
	ReasonImageNotFound     Reason = "image_not_found"
	ReasonImageSizeConflict Reason = "image_size_conflict"

	ReasonOperationInProgress Reason = "operation_in_progress"
	ReasonValidationFailed    Reason = "validation_failed"
	ReasonInternal            Reason = "internal_error"
)

// Error is the orchestrator-side failure type. Status is the HTTP status
// family the failure maps to; Reason is machine readable; Detail carries
// optional structured context such as the conflicting size or server id.
type Error struct {
	Status int
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
	}
	return string(e.Reason)
}

func NotFound(reason Reason, detail string) *Error {
	return &Error{Status: http.StatusNotFound, Reason: reason, Detail: detail}
}

func Conflict(reason Reason, detail string) *Error {
	return &Error{Status: http.StatusConflict, Reason: reason, Detail: detail}
}

// QuotaExceeded is a Conflict subtype; it keeps 409 semantics while staying
// distinguishable by reason code.
func QuotaExceeded(reason Reason) *Error {
	return &Error{Status: http.StatusConflict, Reason: reason}
}

func Validation(detail string) *Error {
	return &Error{Status: http.StatusBadRequest, Reason: ReasonValidationFailed, Detail: detail}
}

// AuthInvalid marks a credential that is structurally present but rejected
// by the remote control plane.
func AuthInvalid() *Error {
	return &Error{Status: http.StatusUnauthorized, Reason: ReasonTokenInvalid}
}

func Unauthorized(reason Reason) *Error {
	return &Error{Status: http.StatusUnauthorized, Reason: reason}
}

func Internal(detail string) *Error {
	return &Error{Status: http.StatusInternalServerError, Reason: ReasonInternal, Detail: detail}
}
