package main

import "github.com/killallgit/wortschatz-api/cmd"

// @title           Wortschatz API
// @version         1.0.0
// @description     German audio transcription with word timings, a dictionary lookup and a personal vocabulary list
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/wortschatz-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:5000
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
