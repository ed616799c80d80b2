package fixture

import "time"

func setup() (int, string) {
	return 43, "my_string"
}

func teardown() {}

func openConn() (*Conn, time.Duration) {
	return Open("primary"), time.Second
}

func setupWithArgs(n int) int {
	return n
}

func teardownWithArgs(reason string) {}

var notAFunc = 42
