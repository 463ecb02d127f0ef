// Package integrationtests runs whole workflows through the app, from HCL
// files on disk to published results.
package integrationtests
