// Package scene holds the cameras that drive the render loop.
package scene

import "render-bridge/log"

var logger = log.New("scene")
