// Command migrate manages the database schema.
package main

import "os"

func main() {
	os.Exit(Execute())
}
