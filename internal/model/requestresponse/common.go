package requestresponse

// ResponseMessage : успешный ответ, полезная нагрузка лежит в response
type ResponseMessage struct {
	Response any `json:"response"`
}

// ErrorResponse : тело ответа с ошибкой, его пишет util.HandleError
type ErrorResponse struct {
	Error   string `json:"error" example:"Forbidden"`
	Message string `json:"message" example:"access denied"`
	Code    int    `json:"code" example:"403"`
}
