package errors

import (
	"fmt"
)

type ErrMissingRequiredField struct {
	FieldName string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("отсутствует обязательное поле: %s", e.FieldName)
}

func (e *ErrMissingRequiredField) Is(target error) bool {
	_, ok := target.(*ErrMissingRequiredField)
	return ok
}

type ErrInvalidValue struct {
	FieldName string
	Value     string
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("некорректное значение '%s' для поля '%s'", e.Value, e.FieldName)
}

func (e *ErrInvalidValue) Is(target error) bool {
	_, ok := target.(*ErrInvalidValue)
	return ok
}

type ErrInvalidWebhookURL struct {
	URL string
}

func (e *ErrInvalidWebhookURL) Error() string {
	return "некорректный URL вебхука Discord: " + e.URL
}

func (e *ErrInvalidWebhookURL) Is(target error) bool {
	_, ok := target.(*ErrInvalidWebhookURL)
	return ok
}

type ErrNoDestinations struct{}

func (e *ErrNoDestinations) Error() string {
	return "не настроен ни один вебхук Discord"
}

type ErrDestinationNotFound struct {
	URL string
}

func (e *ErrDestinationNotFound) Error() string {
	return "вебхук не найден: " + e.URL
}

func (e *ErrDestinationNotFound) Is(target error) bool {
	_, ok := target.(*ErrDestinationNotFound)
	return ok
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

type ErrCommunityPostNotFound struct {
	PostID string
}

func (e *ErrCommunityPostNotFound) Error() string {
	return "пост сообщества не найден: " + e.PostID
}

func (e *ErrCommunityPostNotFound) Is(target error) bool {
	_, ok := target.(*ErrCommunityPostNotFound)
	return ok
}

type ErrChannelHandleNotFound struct {
	ChannelID string
}

func (e *ErrChannelHandleNotFound) Error() string {
	return "хэндл канала не найден: " + e.ChannelID
}

func (e *ErrChannelHandleNotFound) Is(target error) bool {
	_, ok := target.(*ErrChannelHandleNotFound)
	return ok
}

type ErrChallengeVerification struct {
	Reason string
}

func (e *ErrChallengeVerification) Error() string {
	return "ошибка проверки challenge: " + e.Reason
}

func (e *ErrChallengeVerification) Is(target error) bool {
	_, ok := target.(*ErrChallengeVerification)
	return ok
}

type ErrSignatureMismatch struct {
	Reason string
}

func (e *ErrSignatureMismatch) Error() string {
	return "подпись уведомления не прошла проверку: " + e.Reason
}

func (e *ErrSignatureMismatch) Is(target error) bool {
	_, ok := target.(*ErrSignatureMismatch)
	return ok
}

type ErrMalformedFeed struct {
	Cause error
}

func (e *ErrMalformedFeed) Error() string {
	return fmt.Sprintf("некорректный формат ленты: %v", e.Cause)
}

func (e *ErrMalformedFeed) Unwrap() error {
	return e.Cause
}

func (e *ErrMalformedFeed) Is(target error) bool {
	_, ok := target.(*ErrMalformedFeed)
	return ok
}

type ErrMetadataUnavailable struct {
	VideoID string
	Cause   error
}

func (e *ErrMetadataUnavailable) Error() string {
	return fmt.Sprintf("метаданные видео %s недоступны: %v", e.VideoID, e.Cause)
}

func (e *ErrMetadataUnavailable) Unwrap() error {
	return e.Cause
}

type ErrScraperFailed struct {
	ChannelURL string
	Cause      error
}

func (e *ErrScraperFailed) Error() string {
	return fmt.Sprintf("ошибка скрапера для %s: %v", e.ChannelURL, e.Cause)
}

func (e *ErrScraperFailed) Unwrap() error {
	return e.Cause
}

type ErrDeliveryFailed struct {
	NotificationID string
	Attempts       int
	Cause          error
}

func (e *ErrDeliveryFailed) Error() string {
	return fmt.Sprintf("не удалось доставить уведомление %s ни в один из %d вебхуков: %v",
		e.NotificationID, e.Attempts, e.Cause)
}

func (e *ErrDeliveryFailed) Unwrap() error {
	return e.Cause
}

func (e *ErrDeliveryFailed) Is(target error) bool {
	_, ok := target.(*ErrDeliveryFailed)
	return ok
}

type ErrCheckInProgress struct{}

func (e *ErrCheckInProgress) Error() string {
	return "проверка постов сообщества уже выполняется"
}

func (e *ErrCheckInProgress) Is(target error) bool {
	_, ok := target.(*ErrCheckInProgress)
	return ok
}

type ErrHubRequestFailed struct {
	Mode       string
	StatusCode int
	Body       string
}

func (e *ErrHubRequestFailed) Error() string {
	return fmt.Sprintf("хаб WebSub отклонил запрос %s: статус %d: %s", e.Mode, e.StatusCode, e.Body)
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
