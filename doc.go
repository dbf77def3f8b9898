// Package thumbgrid provides a scrollable thumbnail grid widget for Fyne.
//
// A Grid shows a set of image files as thumbnails reflowed over the available
// width, with mouse and keyboard selection, hover highlighting, tooltips,
// zooming, file drops and asynchronous image loading on a bounded worker
// pool. Thumbnails are plain values (Thumb) that can be created, inspected
// and manipulated independently of the widget.
//
// All Grid methods must be called on the Fyne UI goroutine unless noted
// otherwise; image decoding is handed off to workers internally.
package thumbgrid
