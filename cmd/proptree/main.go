// FILE: lixenwraith/proptree/cmd/proptree/main.go
package main

func main() {
	Execute()
}
