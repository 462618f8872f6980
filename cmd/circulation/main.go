// Command circulation runs the library circulation service.
//
//	@title			Library Circulation API
//	@version		1.0
//	@description	Checkout, return and fine lifecycle for a library's lending desk.
//	@BasePath		/
package main

import (
	_ "github.com/libraryhub/circulation/docs"
)

func main() {
	Execute()
}
