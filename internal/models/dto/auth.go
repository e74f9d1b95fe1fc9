package dto

type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SignupRequest struct {
	Email             string `json:"email" validate:"required,email"`
	VerifyNumberInput string `json:"verifyNumberInput" validate:"required"`
	Password          string `json:"password" validate:"required"`
	PasswordConfirm   string `json:"passwordConfirm" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignupResponse struct {
	UserID int64 `json:"userId"`
}
