package capture

import (
	"fmt"

	"github.com/chromedp/cdproto/cdp"
)

// cdpColorWhite is the background override applied during capture
var cdpColorWhite = cdp.RGBA{R: 255, G: 255, B: 255, A: 1}

// expandScrollablesJS returns a script that grows every scrollable container
// inside the region to its full scroll height, remembering the original
// inline styles on the window for later restoration. Evaluates to false when
// the region element does not exist.
func expandScrollablesJS(regionID string) string {
	return fmt.Sprintf(`(() => {
	const root = document.getElementById(%q);
	if (!root) return false;
	window.__captureOrigStyles = [];
	const nodes = [root, ...root.querySelectorAll('*')];
	for (const el of nodes) {
		const cs = window.getComputedStyle(el);
		const scrollable = (cs.overflowY === 'auto' || cs.overflowY === 'scroll' || cs.overflow === 'auto' || cs.overflow === 'scroll')
			&& el.scrollHeight > el.clientHeight;
		if (scrollable) {
			window.__captureOrigStyles.push([el, el.style.cssText]);
			el.style.height = el.scrollHeight + 'px';
			el.style.maxHeight = 'none';
			el.style.overflow = 'visible';
		}
	}
	return true;
})()`, regionID)
}

// restoreScrollablesJS returns a script that puts the recorded inline styles
// back and drops the record. Safe to run when nothing was expanded.
func restoreScrollablesJS() string {
	return `(() => {
	if (!window.__captureOrigStyles) return true;
	for (const [el, css] of window.__captureOrigStyles) {
		el.style.cssText = css;
	}
	delete window.__captureOrigStyles;
	return true;
})()`
}

// measureRegionJS returns a script that evaluates to the region's rendered
// box height and full scroll height as JSON, or null when the element does
// not exist.
func measureRegionJS(regionID string) string {
	return fmt.Sprintf(`(() => {
	const el = document.getElementById(%q);
	if (!el) return null;
	const r = el.getBoundingClientRect();
	return {box: r.height, scroll: el.scrollHeight};
})()`, regionID)
}

// regionRectJS returns a script that evaluates to the region's absolute
// bounding box as JSON, or null when the element does not exist.
func regionRectJS(regionID string) string {
	return fmt.Sprintf(`(() => {
	const el = document.getElementById(%q);
	if (!el) return null;
	const r = el.getBoundingClientRect();
	return {
		x: r.x + window.scrollX,
		y: r.y + window.scrollY,
		width: el.scrollWidth > r.width ? el.scrollWidth : r.width,
		height: el.scrollHeight > r.height ? el.scrollHeight : r.height
	};
})()`, regionID)
}
