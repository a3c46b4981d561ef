// Command votemax runs and operates a Vote Max Token contract.
package main

func main() {
	Execute()
}
