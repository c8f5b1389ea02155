package client

import (
	"fmt"
	"net/url"
)

const UserIDHeader = "X-User-ID"

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string, userID string) *ReservationClient {
	httpClient := NewHttpClient(baseUrl)
	if userID != "" {
		httpClient.DefaultHeaders[UserIDHeader] = userID
	}
	return &ReservationClient{httpClient: httpClient}
}

func (c *ReservationClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) CreateWithIdempotencyKey(body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/reservations", body, map[string]string{"Idempotency-Key": key})
}

func (c *ReservationClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/reservations?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) Search(propertyID string, startDate string, endDate string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("property_id", propertyID)

	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}

	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	return c.httpClient.GET("/api/v1/reservations/search?" + q.Encode())
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET(reservationPath(id))
}

func (c *ReservationClient) UpdateStay(id string, body any) (*Response, error) {
	return c.httpClient.PATCH(reservationPath(id), body)
}

func (c *ReservationClient) Confirm(id string) (*Response, error) {
	return c.httpClient.POST(reservationPath(id)+"/confirm", nil)
}

func (c *ReservationClient) Cancel(id string, reason string) (*Response, error) {
	return c.httpClient.POST(reservationPath(id)+"/cancel", map[string]string{"reason": reason})
}

func (c *ReservationClient) Complete(id string) (*Response, error) {
	return c.httpClient.POST(reservationPath(id)+"/complete", nil)
}

func (c *ReservationClient) AddPayment(id string, body any) (*Response, error) {
	return c.httpClient.POST(reservationPath(id)+"/payments", body)
}

func (c *ReservationClient) Availability(propertyID string, startDate string, endDate string) (*Response, error) {
	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	return c.httpClient.GET("/api/v1/properties/" + url.PathEscape(propertyID) + "/availability?" + q.Encode())
}

func (c *ReservationClient) WaitForHealthy() error {
	return c.httpClient.WaitForHealthy(defaultHealthWait)
}

func reservationPath(id string) string {
	return "/api/v1/reservations/id/" + url.PathEscape(id)
}
