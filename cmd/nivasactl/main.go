// Command nivasactl inspects and maintains a nivasa deployment from the
// terminal, reading the same environment as the API server.
package main

func main() {
	Execute()
}
