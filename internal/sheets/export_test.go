package sheets

// WithMaxResponseBytes lowers the response size limit.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}
