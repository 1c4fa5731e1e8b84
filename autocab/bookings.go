package autocab

// GetActiveBookings retrieves the currently active booking records.
func (c *Client) GetActiveBookings() ([]BookingReport, error) {
	var resp BookingsResponse
	if err := c.get("/bookings/active", &resp); err != nil {
		return nil, err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}
