package notification

type DriverWelcomeRequest struct {
	DriverName  string `json:"driverName"`
	DriverEmail string `json:"driverEmail"`
}

type EmailResponse struct {
	ID string `json:"id"`
}

type DriverWelcomeResponse struct {
	Success       bool          `json:"success"`
	EmailResponse EmailResponse `json:"emailResponse"`
}

type FailureResponse struct {
	Error string `json:"error"`
}
