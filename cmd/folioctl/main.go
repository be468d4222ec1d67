// cmd/folioctl/main.go
package main

func main() {
	Execute()
}
