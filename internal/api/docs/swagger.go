package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// RegisterRequest is the body of POST /api/register
type RegisterRequest struct {
	Name  string `json:"name" example:"Alice"`
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ..."`
}

// VerifyRequest is the body of POST /api/verify
type VerifyRequest struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ..."`
}

// UserSummary is the public view of a registered user
type UserSummary struct {
	ID        int    `json:"id" example:"1"`
	Name      string `json:"name" example:"Alice"`
	ImagePath string `json:"image_path" example:"static/images/Alice_20240301090507.jpg"`
}

// RegisterResponse represents a successful registration
type RegisterResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"User Alice registered successfully!"`
	User    UserSummary `json:"user"`
}

// VerifyResponse represents a recognized face
type VerifyResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Welcome back, Alice!"`
	User    UserSummary `json:"user"`
}

// ErrorResponse represents a failed request
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Name and image are required"`
}

func errorResponse(code, message, status, description string) response.Response {
	return response.New(ErrorResponse{Code: code, Message: message}, status, description)
}

// NewSwagger describes the public API. host is shown in the UI as the server address.
func NewSwagger(host string) *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facegate API",
		Version:     "v1.0.0",
		Description: "Face registration and verification. Images are sent as base64 JSON fields; identities are matched by Euclidean distance between 128-d face descriptors.",
		Host:        host,
		Path:        "/api",
	})

	endpoints := []*endpoint.EndPoint{
		endpoint.New(
			endpoint.POST,
			"/register",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Register a face under a name"),
			endpoint.WithDescription("Encodes the first face found in the image, saves a JPEG snapshot and appends a user record. Names are not unique."),
			endpoint.WithBody(RegisterRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterResponse{}, "200", "User registered"),
			}),
			endpoint.WithErrors([]response.Response{
				errorResponse("VALIDATION_FAILED", "Name and image are required", "400", "Bad Request"),
				errorResponse("NO_FACE_DETECTED", "No face detected in the image. Please try again with better lighting.", "400", "Bad Request"),
				errorResponse("PROCESSING_ERROR", "Error processing image: illegal base64 data at input byte 4", "500", "Internal Server Error"),
				errorResponse("STORAGE_ERROR", "Failed to save image. Please try again.", "500", "Internal Server Error"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/verify",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Identify a face"),
			endpoint.WithDescription("Returns the earliest registered user whose descriptor is within distance 0.6 of the face in the image."),
			endpoint.WithBody(VerifyRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerifyResponse{}, "200", "Face recognized"),
			}),
			endpoint.WithErrors([]response.Response{
				errorResponse("VALIDATION_FAILED", "Image is required", "400", "Bad Request"),
				errorResponse("NO_FACE_DETECTED", "No face detected in the image. Please try again with better lighting.", "400", "Bad Request"),
				errorResponse("NOT_RECOGNIZED", "User not recognized. Please register first.", "404", "Not Found"),
				errorResponse("PROCESSING_ERROR", "Error processing image: image: unknown format", "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
