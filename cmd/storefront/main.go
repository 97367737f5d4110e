package main

import "github.com/yashrajoria/storefront-backend/cli"

func main() {
	cli.Execute()
}
