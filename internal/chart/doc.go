// Package chart renders option chain views as PNG images with go-chart.
//
// LTP and IV views are drawn as line series with markers. The OI view is
// drawn as overlaid bars, calls first and puts semi-transparent on top.
// Calls are orangered and puts limegreen in every chart.
//
// Axis ranges are always set explicitly. A single strike or a flat series
// is widened so go-chart never sees a zero-width range.
package chart
