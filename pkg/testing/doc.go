// Package testing provides a controller testing harness for Tether.
//
// # Quick Start
//
// Create a tester, load a page, and drive it:
//
//	func TestGallery(t *testing.T) {
//	    tester := tethertest.NewTesterWithT(t)
//	    tester.LoadHTML(`<div data-controller="gallery">
//	        <button id="next" data-action="click->gallery#next"></button>
//	    </div>`)
//	    tester.Register("gallery", func() core.Controller { return &gallery{} })
//	    tester.Start()
//
//	    // Simulate events
//	    tester.Click(tethertest.ByID("next"))
//
//	    // Mutate the document; observers flush before the call returns
//	    tester.SetAttr(tethertest.ByController("gallery"), "data-gallery-index-value", "2")
//
//	    // Assert against the document
//	    if !tester.Find(tethertest.ByAttr("aria-current", "true")).Exists() {
//	        t.Error("expected a current slide")
//	    }
//	}
//
// The harness owns an Application and keeps it flushed, so every assertion
// observes settled state. Finders locate elements the way controllers see
// them, including through a custom attribute schema.
//
// The Recorder controller stands in for real controllers when a test only
// cares about lifecycle and action ordering.
package testing
