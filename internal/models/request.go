package models

// ImageInput is one uploaded photo, base64 encoded. A data URL prefix such as
// "data:image/png;base64," is accepted and stripped.
type ImageInput struct {
	Base64   string `json:"base64" example:"/9j/4AAQSkZJRg..."`
	Filename string `json:"filename" example:"sneaker.jpg"`
}

type ValidateRequest struct {
	Images []ImageInput `json:"images"`
}

type ProcessRequest struct {
	Images []ImageInput `json:"images"`
	// GenerateImages defaults to true when omitted.
	GenerateImages *bool `json:"generate_images,omitempty" example:"true"`
	// ImageSize is a platform format key: instagram, facebook or youtube.
	ImageSize string `json:"image_size,omitempty" example:"instagram"`
	// SessionID attaches the run to an existing session. When empty a new
	// session is created.
	SessionID string `json:"session_id,omitempty"`
	// LegacySessionID accepts the camelCase field older clients send.
	LegacySessionID string `json:"sessionId,omitempty" swaggerignore:"true"`
}

// WantsImages reports whether generation was requested.
func (r *ProcessRequest) WantsImages() bool {
	return r.GenerateImages == nil || *r.GenerateImages
}

// Session returns whichever session id field the client used.
func (r *ProcessRequest) Session() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.LegacySessionID
}

type CreateSessionRequest struct {
	SessionName string                 `json:"session_name,omitempty" example:"Spring catalogue"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" binding:"omitempty,max=100" example:"visualgod"`
	FullName *string `json:"full_name,omitempty" binding:"omitempty,max=100" example:"Ada Lovelace"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ProxyErrorResponse is the envelope used by the validate and process routes.
type ProxyErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
