/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package main

import "github.com/mpromonet/gin-postproc/cmd"

func main() {
	cmd.Execute()
}
