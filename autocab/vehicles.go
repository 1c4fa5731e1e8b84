package autocab

// GetVehicleStatuses retrieves the current telemetry report for all vehicles.
func (c *Client) GetVehicleStatuses() ([]VehicleStatusReport, error) {
	var resp VehiclesStatusResponse
	if err := c.get("/vehicles/status", &resp); err != nil {
		return nil, err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return nil, err
	}
	return resp.Report, nil
}

// Ping checks platform connectivity and returns product/version info.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.get("/ping", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
