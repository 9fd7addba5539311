// Package common provides helpers shared by the tool packages. Its main
// export is the instrumentation middleware applied to every registered tool.
package common
