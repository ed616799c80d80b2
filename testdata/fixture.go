package fixture

// Conn stands in for a resource a suite opens in setup and releases in teardown.
type Conn struct {
	Name   string
	Closed bool
}

func Open(name string) *Conn {
	return &Conn{Name: name}
}

func (c *Conn) Close() {
	c.Closed = true
}
