/* Recover the bits from pulse width modulated captures */
package main

import (
	pulsedemod "github.com/doismellburning/pulsedemod/src"
)

func main() {
	pulsedemod.PulseDemodMain()
}
