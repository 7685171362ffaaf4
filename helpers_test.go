package petango

import (
	"fmt"
	"sync"
)

const searchResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<ArrayOfXmlNode xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns="http://www.petango.com/">
  <XmlNode>
    <adoptableSearch xmlns="">
      <ID>40112233</ID>
      <Name>  Biscuit </Name>
      <Species>Dog</Species>
      <Sex>Male</Sex>
      <PrimaryBreed>Beagle</PrimaryBreed>
      <Location>I am at the adoption center today!</Location>
      <Featured>Yes</Featured>
    </adoptableSearch>
  </XmlNode>
  <XmlNode>
    <adoptableSearch xmlns="">
      <ID>40112234</ID>
      <Name>Marble</Name>
      <Species>Dog</Species>
      <Sex>Female</Sex>
      <PrimaryBreed>Terrier, Pit Bull</PrimaryBreed>
      <Location>Kennel 4</Location>
      <Featured>No</Featured>
    </adoptableSearch>
  </XmlNode>
</ArrayOfXmlNode>`

const emptySearchResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<ArrayOfXmlNode xmlns="http://www.petango.com/" />`

const detailsResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<adoptableDetails xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <CompanyID>1234</CompanyID>
  <ID>40112233</ID>
  <AnimalName>Biscuit</AnimalName>
  <Species>Dog</Species>
  <Location>I'm at an event today!</Location>
  <OnHold>No</OnHold>
  <Featured>No</Featured>
</adoptableDetails>`

const animalsXML = `<root>
  <Animal><ID>1</ID><Name>Rex</Name><Age>3</Age></Animal>
  <Animal><ID>2</ID><Name>Tom</Name><Color>Grey</Color></Animal>
</root>`

const malformedXML = `<root><Animal><ID>1</Name><</Animal></root>`

type logEntry struct {
	level string
	msg   string
	kv    []any
}

// recordingLogger keeps every entry for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (l *recordingLogger) Debug(msg string, kv ...any)  { l.add("debug", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...any)   { l.add("info", msg, kv) }
func (l *recordingLogger) Notice(msg string, kv ...any) { l.add("notice", msg, kv) }
func (l *recordingLogger) Warn(msg string, kv ...any)   { l.add("warn", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...any)  { l.add("error", msg, kv) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func (l *recordingLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprint(l.entries)
}
