package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxDeviceIDLength = 128
	MaxProtocolLength = 64
	MaxRegionLength   = 64
	MaxMeshDevices    = 256
	MaxTimestampLen   = 64

	// Device ids travel in URLs and endpoint strings, so the charset is
	// restricted to what survives both unescaped.
	deviceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)
)

func init() {
	validate = validator.New()
}

// ConnectRequest is the body of POST /api/v1/gateway/connect.
type ConnectRequest struct {
	DeviceID string `json:"device_id" validate:"required,min=1,max=128"`
	Protocol string `json:"protocol" validate:"omitempty,max=64"`
	Region   string `json:"region" validate:"omitempty,max=64"`
}

// SyncRequest is the body of POST /api/v1/gateway/sync.
type SyncRequest struct {
	ConnectionID string          `json:"connection_id" validate:"required,min=1,max=64"`
	SDFDelta     json.RawMessage `json:"sdf_delta,omitempty"`
	Timestamp    string          `json:"timestamp" validate:"omitempty,max=64"`
}

// TransformRequest is the body of POST /api/v1/gateway/transform.
type TransformRequest struct {
	SourceProtocol string `json:"source_protocol" validate:"required,min=1,max=64"`
	TargetProtocol string `json:"target_protocol" validate:"required,min=1,max=64"`
	Payload        any    `json:"payload"`
}

// MeshRequest is the body of POST /api/v1/gateway/mesh.
type MeshRequest struct {
	Devices  []string `json:"devices" validate:"required,min=1,max=256,dive,min=1,max=128"`
	Topology string   `json:"topology" validate:"omitempty,max=32"`
}

// ValidateConnectRequest validates a connect request before it reaches the
// connection table.
func ValidateConnectRequest(req *ConnectRequest) error {
	if req == nil {
		return errors.New("connect request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return ValidateDeviceID(req.DeviceID)
}

// ValidateSyncRequest validates a sync request body. Connection existence is
// checked later against the table, not here.
func ValidateSyncRequest(req *SyncRequest) error {
	if req == nil {
		return errors.New("sync request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if len(req.SDFDelta) > 0 && !json.Valid(req.SDFDelta) {
		return errors.New("sdf_delta: must be valid JSON")
	}
	return nil
}

// ValidateTransformRequest validates a transform request body. Protocol
// registration is checked later against the registry.
func ValidateTransformRequest(req *TransformRequest) error {
	if req == nil {
		return errors.New("transform request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateMeshRequest validates a mesh request body.
func ValidateMeshRequest(req *MeshRequest) error {
	if req == nil {
		return errors.New("mesh request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	for i, device := range req.Devices {
		if err := ValidateDeviceID(device); err != nil {
			return fmt.Errorf("devices[%d]: %w", i, err)
		}
	}
	return nil
}

// ValidateDeviceID checks a device identifier against the allowed charset
// and length.
func ValidateDeviceID(id string) error {
	if id == "" {
		return errors.New("device id cannot be empty")
	}
	if len(id) > MaxDeviceIDLength {
		return fmt.Errorf("device id exceeds maximum length of %d characters", MaxDeviceIDLength)
	}
	if !deviceIDPattern.MatchString(id) {
		return fmt.Errorf("device id '%s' contains invalid characters (allowed: alphanumeric, dot, underscore, colon, hyphen)", id)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
