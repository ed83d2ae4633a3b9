package badger

// Database Key Namespace Design
// ==============================
//
// Data Type         Prefix   Key Format                   Value
// =================================================================
// File descriptor   "f:"     f:<id>                       repository.File (JSON)
// Path index        "p:"     p:<path>                     id (bytes)
// Children          "c:"     c:<parentID>:<childName>     child id (bytes)
//
// Children are denormalized one key per child, so listing a folder is a single
// prefix scan over "c:<parentID>:". Badger iterates keys in byte order, which
// makes the repository order of children the byte order of their names.

const (
	prefixFile  = "f:"
	prefixPath  = "p:"
	prefixChild = "c:"
)

func keyFile(id string) []byte {
	return []byte(prefixFile + id)
}

func keyPath(path string) []byte {
	return []byte(prefixPath + path)
}

func keyChild(parentID, name string) []byte {
	return []byte(prefixChild + parentID + ":" + name)
}

func keyChildPrefix(parentID string) []byte {
	return []byte(prefixChild + parentID + ":")
}
