// Package main provides fritterctl, the administration CLI for a Fritter data directory.
package main

func main() {
	Execute()
}
