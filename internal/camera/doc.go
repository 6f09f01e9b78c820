// Package camera discovers V4L2 capture devices, acquires one exclusively and
// exposes its frames through a latest-frame mailbox.
//
// Live capture runs ffmpeg as a subprocess producing an MJPEG stream on
// stdout. DirectorySource and StaticSource satisfy the same Stream interface
// for development and tests. Monitor watches udev for removal of the device a
// session is using.
package camera
