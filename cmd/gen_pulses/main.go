/* Generate pulse width modulated test captures */
package main

import (
	pulsedemod "github.com/doismellburning/pulsedemod/src"
)

func main() {
	pulsedemod.GenPulsesMain()
}
