// Command ifconnectctl is the reference embedder for package ifconnect: an
// operator-facing CLI that discovers, reads, writes, invokes, and watches
// simulator commands built entirely on the public client surface.
package main

func main() {
	Execute()
}
